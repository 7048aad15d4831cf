package formatter

// generalTemplate renders any issue: its location, then the suggestion
// and note when the issue carries them.
const generalTemplate = `{{template "location" .}}` +
	`{{if .Suggestion}}` + "\n" + `{{suggestion .}}{{end}}` +
	`{{if .Note}}` + "\n" + `{{note .Note}}{{end}}` + "\n"
