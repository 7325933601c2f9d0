package markdown

import (
	"regexp"
	"strings"
)

var infoToken = regexp.MustCompile(`(\w+)=(?:"([^"]*)"|(\S+))|(\S+)`)

// blockInfo holds the attributes of a diagram fence.
type blockInfo struct {
	Type   string
	Format string
	Alt    string
	Title  string
	Role   string
}

// parseInfo reads a fence info string such as
// `plantuml png alt="Login flow"`. The first bare word is the diagram type,
// the second the format.
func parseInfo(info string) blockInfo {
	var bi blockInfo
	var positional []string
	for _, m := range infoToken.FindAllStringSubmatch(strings.TrimSpace(info), -1) {
		if m[4] != "" {
			positional = append(positional, m[4])
			continue
		}
		value := m[2]
		if value == "" {
			value = m[3]
		}
		switch strings.ToLower(m[1]) {
		case "format":
			bi.Format = value
		case "alt":
			bi.Alt = value
		case "title":
			bi.Title = value
		case "role":
			bi.Role = value
		}
	}
	if len(positional) > 0 {
		bi.Type = strings.ToLower(positional[0])
	}
	if len(positional) > 1 && bi.Format == "" {
		bi.Format = positional[1]
	}
	return bi
}

// alt picks the image alt text: explicit alt, then title, then "Diagram".
func (bi blockInfo) alt() string {
	switch {
	case bi.Alt != "":
		return bi.Alt
	case bi.Title != "":
		return bi.Title
	default:
		return "Diagram"
	}
}

// class builds the CSS class list for the rendered figure.
func (bi blockInfo) class(format string) string {
	classes := []string{}
	if bi.Role != "" {
		classes = append(classes, bi.Role)
	}
	classes = append(classes, "kroki")
	if format != "" {
		classes = append(classes, "kroki-format-"+format)
	}
	return strings.Join(classes, " ")
}
