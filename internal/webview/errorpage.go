package webview

import (
	"html/template"
	"io"
)

var errorTemplate = template.Must(template.New("error").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Graph unavailable</title>
</head>
<body>
<h1>The provenance graph could not be built</h1>
<pre id="aqs-error">{{.}}</pre>
</body>
</html>
`))

// ErrorPage writes a page describing err in place of the graph
func ErrorPage(w io.Writer, err error) error {
	return errorTemplate.Execute(w, err.Error())
}
