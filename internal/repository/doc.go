// Package repository defines the persistence interface for floorlink
// projects.
//
// A project is a named snapshot: the active content reference, the content
// bytes, and every placed item in rendering order. The sqlite subpackage
// implements the interface.
//
// # SQLite Implementation
//
// The sqlite implementation stores projects in WAL mode. It handles:
//
// - Transactional saves that replace a project's items atomically
// - Content-addressed document blobs shared between projects
// - Ordered JSON serialisation of item properties
// - Foreign key cascades from projects to items
//
// # Testing
//
// The sqlite repository is tested against in-memory databases.
package repository
