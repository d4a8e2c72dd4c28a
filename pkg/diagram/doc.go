// Package diagram stores compiled diagrams and builds share links.
//
// A Diagram is saved through a Manager, which compiles the source first and
// refuses to store anything that does not compile. Diagrams saved for an
// activity replace the previous diagram of that activity.
//
// Storage backends live in the storage subpackage and retention pruning in
// the retention subpackage.
//
// Share links carry the whole source in the URL:
//
//	link, _ := diagram.ShareURL("https://example.org/flowchart", source)
//	// https://example.org/flowchart?diagram=cmVhZCBu...
package diagram
