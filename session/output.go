package session

// DefaultOutputPrefix is prepended to the name of exported documents.
const DefaultOutputPrefix = "signed-"

// defaultName stands in for documents loaded without a file name.
const defaultName = "document.pdf"

// OutputName returns the file name for the signed copy of original.
func OutputName(original string) string {
	return prefixedName(DefaultOutputPrefix, original)
}

func prefixedName(prefix, original string) string {
	if original == "" {
		original = defaultName
	}
	return prefix + original
}
