// Package listview renders a windowed, cursor-driven list for Bubble Tea models.
//
// Only the rows around the cursor are rendered, so a page of any size costs
// O(viewport height) per frame. The owning model supplies a RenderFunc and
// forwards navigation keys; paging through a result set is done by the owner,
// which replaces the items with SetItems.
package listview
