// Package authz holds the owner-or-admin access rules for print jobs.
//
// The rules are pure functions of the caller and the record's owner —
// no I/O, no errors, total on all well-formed input. Keeping them in one
// tiny package (instead of inline checks scattered through the services)
// means every read/write path shares exactly the same decision.
package authz

// Caller is the already-verified identity making a request.
//
// ExternalID is the identity provider's user ID, authenticated once at
// the HTTP boundary (OAuth callback → JWT) and passed down explicitly.
// Nothing below the boundary re-derives or re-trusts identity.
type Caller struct {
	ExternalID string
	Admin      bool
}

// CanReadJob reports whether the caller may read a job owned by ownerID.
// Owners see their own jobs; admins see everything.
func CanReadJob(c Caller, ownerID string) bool {
	if c.Admin {
		return true
	}
	return c.ExternalID != "" && c.ExternalID == ownerID
}

// CanSubmitJob reports whether the caller may create a job under ownerID.
// Jobs can only be submitted under the caller's own identity — admins get
// no special power here.
func CanSubmitJob(c Caller, ownerID string) bool {
	return c.ExternalID != "" && c.ExternalID == ownerID
}

// CanManageJobs reports whether the caller may list all jobs, set any
// job's status, or write admin notes.
func CanManageJobs(c Caller) bool {
	return c.Admin
}
