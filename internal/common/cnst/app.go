package cnst

const (
	AppName     = "anachak"
	CommandName = "anachak-apiserver"
)

const (
	ApiServerYaml = "apiserver.yaml"
)
