package cmd

import (
	"text/template"
)

var usageTemplate = template.Must(template.New("cmd-usage").Parse(`
NAME
	{{.GetName}}{{if .GetDesc}} - {{.GetDesc}}{{end}}

SYNOPSIS
	{{.GetName}} {{with .GetSynopsis}}{{.}}{{else}}[<args>]{{end}}
{{with .GetOptionDesc}}
OPTION
{{.}}{{end}}
COMMON OPTION
  -vmodule string
    	comma-separated list of pattern=N settings for file-filtered logging
{{with .GetDetails}}
DESCRIPTION
{{.}}
{{end}}{{with .GetExample}}
EXAMPLE
{{.}}
{{end}}
ENVIRONMENT
	PAGER	program used to page this text, stdout when unset
`))
