package formatter

const duplicateConstituentsTemplate = `{{template "location" .}}` +
	`{{help "remove the redundant constituent"}}` +
	`{{if .Suggestion}}` + "\n" + `{{suggestion .}}{{end}}` + "\n"
