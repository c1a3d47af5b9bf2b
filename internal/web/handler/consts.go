package handler

const (
	// APIPath is the prefix of every manager API route.
	APIPath = "/manager/api"

	// RouterRootPath is the root path of a route group.
	RouterRootPath = "/"

	// ParamID is the name of the numeric id path parameter.
	ParamID = "id"

	// ErrNilDepsFatalLogMsg is used if app or one of the handler dependencies is nil.
	ErrNilDepsFatalLogMsg = "app or handler dependencies are nil"
)
