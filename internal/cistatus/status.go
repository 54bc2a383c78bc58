package cistatus

const (
	failedStatusLabelConstant   = "failed"
	buildingStatusLabelConstant = "building"
	successStatusLabelConstant  = "success"
	unknownStatusLabelConstant  = "unknown"
)

// BuildStatus is the three-way outcome of a CI build query.
type BuildStatus int

// Build status enumerations. Failed is the zero value so that unrecognized
// CI results collapse to the safe, install-blocking state.
const (
	BuildStatusFailed BuildStatus = iota
	BuildStatusBuilding
	BuildStatusSuccess
)

// String renders the status for logs and error messages.
func (status BuildStatus) String() string {
	switch status {
	case BuildStatusFailed:
		return failedStatusLabelConstant
	case BuildStatusBuilding:
		return buildingStatusLabelConstant
	case BuildStatusSuccess:
		return successStatusLabelConstant
	default:
		return unknownStatusLabelConstant
	}
}
