// Package policy declares which event fields each role may change.
package policy

type Role string

const (
	RoleOwner Role = "owner"
	RoleStaff Role = "staff"
	RoleOther Role = "other"
)

const (
	FieldName                  = "name"
	FieldDescription           = "description"
	FieldPrice                 = "price"
	FieldCategory              = "category"
	FieldTags                  = "tags"
	FieldPlace                 = "place"
	FieldEventDate             = "event_date"
	FieldParticipationDeadline = "participation_deadline"
	FieldMaxParticipants       = "max_participants"
	FieldIsPrivate             = "is_private"
	FieldCoverImage            = "cover_image"
)

// Server-assigned or owned by other operations; never writable through update.
var ReadOnlyFields = []string{"id", "created_by", "status", "cancelled", "creation_ts", "last_modified_ts"}

var mutableFields = map[Role]map[string]bool{
	RoleOwner: {
		FieldName:                  true,
		FieldDescription:           true,
		FieldPrice:                 true,
		FieldCategory:              true,
		FieldTags:                  true,
		FieldPlace:                 true,
		FieldEventDate:             true,
		FieldParticipationDeadline: true,
		FieldMaxParticipants:       true,
		FieldIsPrivate:             true,
		FieldCoverImage:            true,
	},
	// Staff may look at everything but edits stay with the creator.
	RoleStaff: {},
	RoleOther: {},
}

func CanMutate(role Role, field string) bool {
	return mutableFields[role][field]
}

// Forbidden returns the subset of fields role may not change, in input order.
func Forbidden(role Role, fields []string) []string {
	var out []string
	for _, f := range fields {
		if !CanMutate(role, f) {
			out = append(out, f)
		}
	}
	return out
}

// RoleFor resolves the caller's role towards an event created by ownerID.
func RoleFor(actorID, ownerID uint, isStaff bool) Role {
	switch {
	case actorID != 0 && actorID == ownerID:
		return RoleOwner
	case isStaff:
		return RoleStaff
	default:
		return RoleOther
	}
}
