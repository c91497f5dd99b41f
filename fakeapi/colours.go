package fakeapi

import "strings"

const (
	colourGreen   = "\033[32m"
	colourYellow  = "\033[33m"
	colourBlue    = "\033[34m"
	colourMagenta = "\033[35m"
	colourCyan    = "\033[36m"
	colourGray    = "\033[90m" // Bright black, often appears as gray

	colourReset = "\033[0m"
)

var methodColors = map[string]string{
	"GET":    colourGreen,
	"POST":   colourBlue,
	"PUT":    colourCyan,
	"DELETE": colourYellow,
	"PATCH":  colourMagenta,
}

func colourMethod(method string) string {
	colour, ok := methodColors[method]
	if !ok {
		colour = colourGray
	}
	return colour + method + colourReset
}

// colourRoute colours the method of a "METHOD /path" route
func colourRoute(route string) string {
	method, path, ok := strings.Cut(route, " ")
	if !ok {
		return route
	}
	return colourMethod(method) + " " + path
}
