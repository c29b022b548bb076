// Package diagram maintains the connectivity view of the registry: one node
// per item and one edge wherever an item property names another item's id.
//
// The Reconciler diffs the registry against a Surface in place (add, update,
// remove) so the surface keeps its viewport and selection across passes,
// then runs a Layout once and writes node positions back to the surface.
//
// Edge colours are a pure function of the property key that produced them,
// so the same relationship kind always has the same colour.
//
// Exporters render the current surface as Graphviz DOT or PNG.
package diagram
