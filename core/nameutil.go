package core

import (
	"strings"

	"github.com/fatih/camelcase"
	"github.com/igorsobreira/titlecase"
)

// DisplayName turns a file stem such as "SkyFactory5" or "my_cool-pack" into a title.
func DisplayName(stem string) string {
	if strings.TrimSpace(stem) == "" {
		return ""
	}
	words := strings.Join(camelcase.Split(stem), " ")
	words = strings.ReplaceAll(words, " - ", " ")
	words = strings.ReplaceAll(words, " _ ", " ")
	return titlecase.Title(strings.Join(strings.Fields(words), " "))
}
