package commands

type ExportArgs struct {
	*RootArgs

	manifest       *string
	into           *string
	exclude        *[]string
	verifyArchives *bool
}

func NewExportArgs(rootArgs *RootArgs) *ExportArgs {
	return &ExportArgs{
		RootArgs:       rootArgs,
		manifest:       new(string),
		into:           new(string),
		exclude:        new([]string),
		verifyArchives: new(bool),
	}
}

func (a *ExportArgs) GetManifest() string {
	return *a.manifest
}

func (a *ExportArgs) GetInto() string {
	return *a.into
}

func (a *ExportArgs) GetExclude() []string {
	return *a.exclude
}

func (a *ExportArgs) GetVerifyArchives() bool {
	return *a.verifyArchives
}
