package report

import (
	"html/template"
	"os"
)

// Word opens HTML saved with a .doc extension and the Office namespaces.
var docTemplate = template.Must(template.New("doc").Funcs(template.FuncMap{
	"stamp": func(r Report) string { return r.GeneratedAt.Format(timestampLayout) },
	"inc":   func(i int) int { return i + 1 },
}).Parse(`<html xmlns:o="urn:schemas-microsoft-com:office:office" xmlns:w="urn:schemas-microsoft-com:office:word" xmlns="http://www.w3.org/TR/REC-html40">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: Calibri, Arial, sans-serif; font-size: 11pt; }
h1 { text-align: center; }
.meta { text-align: center; color: #666666; font-size: 9pt; }
.label { font-weight: bold; margin-top: 12pt; }
.answer { white-space: pre-wrap; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p class="meta">Generated: {{stamp .}}</p>
{{$multi := gt (len .Entries) 1}}{{range $i, $e := .Entries}}
{{if $multi}}<h2>Entry {{inc $i}}</h2>{{if not $e.Timestamp.IsZero}}<p class="meta">{{$e.Timestamp.Format "2006-01-02 15:04:05"}}</p>{{end}}{{end}}
<p class="label">Question:</p>
<p>{{$e.Question}}</p>
<p class="label">Answer:</p>
<p class="answer">{{$e.Answer}}</p>
{{end}}
</body>
</html>
`))

func writeDOC(path string, rep Report) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := docTemplate.Execute(f, rep); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
