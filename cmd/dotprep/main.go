// cmd/dotprep/main.go
package main

import (
	"dotprep/internal/app"
	"dotprep/internal/appshell"
)

func main() { appshell.Main(app.RunContext) }
