package builder

const (
	FormIDKey  = "form_id"
	VersionKey = "version"
)
