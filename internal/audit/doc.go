// Package audit records and queries the audit trail of sensor registry
// mutations (create, update, enable, disable, delete).
//
// Entries are append-only rows of the audit_logs table. Writing an entry is
// best-effort from the caller's point of view: the registry logs a failed
// write and carries on.
package audit
