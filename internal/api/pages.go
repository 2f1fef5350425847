package api

import (
	"bytes"
	"html/template"
	"log/slog"
	"net/http"
)

type redirectPageData struct {
	Target string
	Phone  string
	Group  string
}

var redirectTmpl = template.Must(template.New("redirect").Parse(`<!doctype html>
<html lang="pt-BR">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="1;url={{.Target}}">
<title>Redirecionando para o WhatsApp</title>
</head>
<body>
<main>
<h1>Redirecionando para o WhatsApp…</h1>
{{if .Phone}}<p>Número: +{{.Phone}}</p>{{end}}
<p><a href="{{.Target}}">Clique aqui se não for redirecionado automaticamente.</a></p>
</main>
</body>
</html>
`))

var errorTmpl = template.Must(template.New("error").Parse(`<!doctype html>
<html lang="pt-BR">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Link indisponível</title>
</head>
<body>
<main>
<h1>Link indisponível</h1>
<p>Este link não está disponível no momento. Tente novamente mais tarde.</p>
</main>
</body>
</html>
`))

func renderPage(w http.ResponseWriter, status int, tmpl *template.Template, data any) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		slog.Error("render page failed", "template", tmpl.Name(), "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}
