package constants

const (
	TemplateExtension = ".tmpl"

	UpdateScriptPath = "/usr/local/bin/update-site"

	WebRoot = "/var/www/html"
)
