package logger

import (
	"fmt"
	"time"
)

// ANSI color codes for terminal output.
const (
	reset  = "\033[0m"
	bold   = "\033[1m"
	dim    = "\033[2m"
	red    = "\033[31m"
	green  = "\033[32m"
	yellow = "\033[33m"
	cyan   = "\033[36m"
)

func timestamp() string {
	return time.Now().Format("15:04:05")
}

func emit(color, level, tag, msg string) {
	fmt.Printf("%s%s%s %s%-5s%s %s[%s]%s %s\n",
		dim, timestamp(), reset, color, level, reset, bold, tag, reset, msg)
}

// Info logs an informational message with a component tag.
func Info(tag, msg string) {
	emit(cyan, "INFO", tag, msg)
}

// Success logs a success message.
func Success(tag, msg string) {
	emit(green, "OK", tag, msg)
}

// Warn logs a warning.
func Warn(tag, msg string) {
	emit(yellow, "WARN", tag, msg)
}

// Error logs an error.
func Error(tag, msg string) {
	emit(red, "ERROR", tag, msg)
}

// Banner prints the startup banner with the build version.
func Banner(version string) {
	if version == "" {
		version = "dev"
	}
	fmt.Printf("%s%s", bold, cyan)
	fmt.Println(`  ___ _  _ ___    _____ ___    _   ___  ___ ___`)
	fmt.Println(` | __| || | __|  |_   _| _ \  /_\ |   \| __| _ \`)
	fmt.Println(` | _| \ V /| _|     | | |   / / _ \| |) | _||   /`)
	fmt.Println(` |___| \_/ |___|    |_| |_|_\/_/ \_\___/|___|_|_\`)
	fmt.Printf("%s\n", reset)
	fmt.Printf(" %sversion %s%s\n\n", dim, version, reset)
}

// Section prints a visual section divider.
func Section(name string) {
	fmt.Printf("\n%s── %s %s%s\n", bold, name, "──────────────────────────────", reset)
}

// Stats prints a key/value statistic line.
func Stats(key string, value interface{}) {
	fmt.Printf("   %s%-24s%s %v\n", dim, key, reset, value)
}

// Server prints the listen address once the HTTP server is up.
func Server(addr string) {
	fmt.Printf("\n %s➜%s  Listening on %shttp://%s%s\n\n", green, reset, bold, addr, reset)
}
