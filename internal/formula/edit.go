package formula

// InsertVariable inserts a variable name at cursor and returns the new text
// and the cursor position after the insertion. A space is added where the
// name would otherwise run into a neighbouring identifier.
func InsertVariable(src string, cursor int, name string) (string, int) {
	cursor = clampCursor(src, cursor)
	before, after := src[:cursor], src[cursor:]

	if before != "" && isIdentPart(before[len(before)-1]) {
		name = " " + name
	}
	if after != "" && isIdentPart(after[0]) {
		name += " "
	}

	return before + name + after, cursor + len(name)
}

// InsertOperator inserts op padded with single spaces at cursor.
func InsertOperator(src string, cursor int, op string) (string, int) {
	cursor = clampCursor(src, cursor)
	text := " " + op + " "

	return src[:cursor] + text + src[cursor:], cursor + len(text)
}

func clampCursor(src string, cursor int) int {
	return min(max(cursor, 0), len(src))
}
