// Package policy holds the access-control rules for medical documents as
// pure functions over the actor and the document's ownership facts. No store
// access, no side effects; handlers load the records and ask.
//
// There is no treatment-relationship concept: any doctor can read any
// document a patient has marked public. That is a deliberate simplification
// carried over from the product design, and a known weak trust boundary.
package policy

import "medicase/internal/model"

// Actor is the authenticated identity performing a request.
type Actor struct {
	ID   string
	Role model.Role
}

// CanRead reports whether the actor may view the document and download its
// content. Owners, uploaders and admins always may; doctors only when the
// document is public. Everyone else is denied regardless of visibility.
func CanRead(a Actor, d *model.Document) bool {
	if a.ID == d.PatientID || a.ID == d.UploadedBy {
		return true
	}
	if a.Role == model.RoleAdmin {
		return true
	}
	if a.Role == model.RoleDoctor && d.Public {
		return true
	}
	return false
}

// CanModify reports whether the actor may update the document's metadata or
// delete it.
func CanModify(a Actor, d *model.Document) bool {
	return a.Role == model.RoleAdmin || a.ID == d.PatientID || a.ID == d.UploadedBy
}

// CanToggleVisibility reports whether the actor may flip the public flag.
// Only the owning patient controls exposure of their own records; being the
// uploader is not enough.
func CanToggleVisibility(a Actor, d *model.Document) bool {
	return a.Role == model.RoleAdmin || a.ID == d.PatientID
}

// CanListAll reports whether the actor may see a patient's full document
// list, private documents included. Callers failing this check are limited
// to the public subset.
func CanListAll(a Actor, patientID string) bool {
	return a.ID == patientID || a.Role == model.RoleAdmin
}
