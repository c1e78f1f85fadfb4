package imdf

// Category values that renderers commonly distinguish. IMDF defines many
// more; any string is a valid category.
const (
	UnitCategoryElevator       = "elevator"
	UnitCategoryEscalator      = "escalator"
	UnitCategoryStairs         = "stairs"
	UnitCategoryRestroom       = "restroom"
	UnitCategoryRestroomMale   = "restroom.male"
	UnitCategoryRestroomFemale = "restroom.female"
	UnitCategoryRoom           = "room"
	UnitCategoryNonPublic      = "nonpublic"
	UnitCategoryWalkway        = "walkway"

	AmenityCategoryBathroom = "bathroom"

	OccupantCategoryClassroom  = "classroom"
	OccupantCategoryAuditorium = "auditorium"
	OccupantCategoryLab        = "lab"
	OccupantCategoryOffice     = "office"
	OccupantCategoryConference = "conference"
)

// IsVerticalTransport reports whether a unit category connects levels.
func IsVerticalTransport(category string) bool {
	switch category {
	case UnitCategoryElevator, UnitCategoryEscalator, UnitCategoryStairs:
		return true
	}
	return false
}

// IsRestroom reports whether a unit category is a restroom of any kind.
func IsRestroom(category string) bool {
	switch category {
	case UnitCategoryRestroom, UnitCategoryRestroomMale, UnitCategoryRestroomFemale:
		return true
	}
	return false
}
