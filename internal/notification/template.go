package notification

import (
	"strings"
	"text/template"
)

// Changed-file tags, in block order.
const (
	TagAdded    = "A "
	TagRemoved  = "R "
	TagModified = "M "
)

const bodyTemplate = `Branch: {{ .Ref }}
Revision: {{ .Revision }}
Author: {{ .PusherName }}
Log Message:

{{ .Message }}

Modified Files:
{{ changedFiles . }}

Compare: {{ .CompareURL }}
`

var bodyFuncs = template.FuncMap{
	"changedFiles": func(e *PushEvent) string {
		return ChangedFiles(e.Added, e.Removed, e.Modified)
	},
}

var body = template.Must(template.New("body").Funcs(bodyFuncs).Parse(bodyTemplate))

// ChangedFiles renders the tagged file list: added, then removed, then modified,
// one path per line. Categories without entries contribute nothing.
func ChangedFiles(added, removed, modified []string) string {
	blocks := make([]string, 0, 3)
	for _, category := range []struct {
		tag   string
		paths []string
	}{
		{TagAdded, added},
		{TagRemoved, removed},
		{TagModified, modified},
	} {
		if len(category.paths) == 0 {
			continue
		}
		blocks = append(blocks, addLinesPrefix(category.tag, category.paths))
	}
	return strings.Join(blocks, "\n")
}

func addLinesPrefix(prefix string, lines []string) string {
	return prefix + strings.Join(lines, "\n"+prefix)
}
