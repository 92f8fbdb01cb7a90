package document

// CanAccess reports whether userID may read or write d: the owner and
// every collaborator may, nobody else. Pure check: the caller supplies
// an already-loaded document and fails closed on lookup errors.
func CanAccess(d *Document, userID string) bool {
	if d == nil || userID == "" {
		return false
	}
	if d.OwnerID == userID {
		return true
	}
	for _, id := range d.CollaboratorIDs {
		if id == userID {
			return true
		}
	}
	return false
}
