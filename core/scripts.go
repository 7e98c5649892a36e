package core

import (
	"fmt"
	"strings"
)

// StartScripts holds the rendered start.bat and start.sh contents.
type StartScripts struct {
	Bat string
	Sh  string
}

// JavaArgs builds the heap flags for a memory size such as "4G".
func JavaArgs(memory string) string {
	if memory == "" {
		memory = "4G"
	}
	return fmt.Sprintf("-Xmx%s -Xms%s", memory, memory)
}

// installerScripts run the Forge style installer once, then remove the installer and themselves.
func installerScripts(jar string, javaArgs string) StartScripts {
	bat := []string{
		"@echo off",
		fmt.Sprintf("java %s -jar %s --installServer", javaArgs, jar),
		"if %ERRORLEVEL% == 0 (",
		fmt.Sprintf("    del /f /q %s", jar),
		`    del /f /q "%~f0"`,
		`    del /f /q "installer.log"`,
		`    del /f /q "start.sh" 2>nul`,
		")",
	}
	sh := []string{
		"#!/bin/bash",
		fmt.Sprintf("java %s -jar %s --installServer", javaArgs, jar),
		"if [ $? -eq 0 ]; then",
		fmt.Sprintf("    rm -f %s", jar),
		`    rm -f "$0"`,
		`    rm -f "installer.log"`,
		`    rm -f "start.bat" 2>/dev/null`,
		"fi",
	}
	return StartScripts{Bat: joinLines(bat, "\r\n"), Sh: joinLines(sh, "\n")}
}

func plainScripts(jar string, javaArgs string) StartScripts {
	bat := []string{
		"@echo off",
		fmt.Sprintf("java %s -jar %s nogui", javaArgs, jar),
		"pause",
	}
	sh := []string{
		"#!/bin/bash",
		fmt.Sprintf("java %s -jar %s nogui", javaArgs, jar),
	}
	return StartScripts{Bat: joinLines(bat, "\r\n"), Sh: joinLines(sh, "\n")}
}

func joinLines(lines []string, eol string) string {
	return strings.Join(lines, eol) + eol
}
