// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/ezrec/regvm/operand"
)

// Macro represents a macro definition in the assembly language.
type Macro struct {
	LineNo int      // Line number of the macro definition.
	Args   []string // Arguments for the macro.
	Lines  []string // Lines of macro text to expand.
}

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO": "0",
	"HERE":   "0",
}

// Assembler is a single pass macro assembler, with a final link pass for
// forward label references.
type Assembler struct {
	Verbose    bool        // If set, verbosely logs the assembler actions.
	Statements []Statement // List of generated statements.

	predefine map[string]string   // Predefines
	Label     map[string]int      // Map of labels to addresses.
	Equate    map[string]string   // Map of equates.
	Macro     map[string](*Macro) // Map of macros.

	address    int // Address of the next emitted byte.
	expansions int // Count of macro expansions.
}

// Predefine defines a new equate or redefines an existing equate, for all
// later calls to Parse.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// splitWords splits a line into words, dropping any ';' comment.
// Quoted strings, character literals, and $(...) expressions are kept
// whole, even if they contain spaces.
func splitWords(line string) (words []string, err error) {
	var word strings.Builder
	var quote byte
	var escaped bool
	var depth int
	var in_word bool

	flush := func() {
		if in_word {
			words = append(words, word.String())
			word.Reset()
			in_word = false
		}
	}

	for n := 0; n < len(line); n++ {
		c := line[n]
		switch {
		case quote != 0:
			word.WriteByte(c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == quote:
				quote = 0
			}
			continue
		case depth > 0:
			word.WriteByte(c)
			switch c {
			case '(':
				depth++
			case ')':
				depth--
			}
			continue
		}

		switch {
		case c == ';':
			flush()
			return
		case c == ' ' || c == '\t':
			flush()
		case c == '"' || c == '\'':
			quote = c
			in_word = true
			word.WriteByte(c)
		case c == '$' && n+1 < len(line) && line[n+1] == '(':
			depth = 1
			in_word = true
			word.WriteString("$(")
			n++
		default:
			in_word = true
			word.WriteByte(c)
		}
	}

	if quote != 0 {
		err = ErrStringUnterminated
		return
	}

	if depth > 0 {
		err = ErrExprUnterminated
		return
	}

	flush()

	return
}

// isString returns true if the word is a double quoted string.
func isString(word string) bool {
	return len(word) >= 2 && word[0] == '"'
}

// isIdentifier returns true if the word could name a label.
func isIdentifier(word string) bool {
	if len(word) == 0 {
		return false
	}

	for n, c := range word {
		switch {
		case c == '_' || c == '.':
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case n > 0 && c >= '0' && c <= '9':
		default:
			return false
		}
	}

	return true
}

// valueOf returns the value of a simple word. An unknown identifier is
// returned as a label to be linked later, with a zero value.
func (asm *Assembler) valueOf(word string) (value uint32, label string, err error) {
	equate, ok := asm.Equate[word]
	if ok {
		word = equate
	}

	if len(word) == 0 {
		err = ErrParseNumber(word)
		return
	}

	address, ok := asm.Label[word]
	if ok {
		value = uint32(address)
		return
	}

	if word[0] == '\'' {
		var str string
		str, err = strconv.Unquote(word)
		if err != nil || len([]rune(str)) != 1 || []rune(str)[0] > 0xff {
			err = ErrParseNumber(word)
			return
		}
		value = uint32([]rune(str)[0])
		return
	}

	v64, perr := strconv.ParseInt(word, 0, 64)
	if perr != nil {
		if isIdentifier(word) {
			label = word
			return
		}
		err = ErrParseNumber(word)
		return
	}

	if v64 > 0xffffffff || v64 < -int64(0x80000000) {
		err = ErrValueRange
		return
	}

	value = uint32(v64)

	return
}

// byteOf returns the value of a word that must fit in a byte.
func (asm *Assembler) byteOf(word string) (value byte, err error) {
	v32, label, err := asm.valueOf(word)
	if err != nil {
		return
	}

	if len(label) != 0 {
		err = ErrLabelMissing(label)
		return
	}

	if v32 > 0xff {
		err = ErrValueRange
		return
	}

	value = byte(v32)

	return
}

// stringOf returns the bytes of a double quoted string.
func stringOf(word string) (data []byte, err error) {
	str, err := strconv.Unquote(word)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	data = []byte(str)

	return
}

// bytesOf returns the bytes of a list of strings and byte values.
func (asm *Assembler) bytesOf(words []string) (data []byte, err error) {
	for _, word := range words {
		if isString(word) {
			var str []byte
			str, err = stringOf(word)
			if err != nil {
				return
			}
			data = append(data, str...)
			continue
		}

		var value byte
		value, err = asm.byteOf(word)
		if err != nil {
			return
		}
		data = append(data, value)
	}

	return
}

// operandOf encodes an operand word. A memory address may be a forward
// label reference, returned as a link relative to the encoded bytes.
func (asm *Assembler) operandOf(word string) (code []byte, link *Link, err error) {
	width_text, address_text, is_mem := strings.Cut(word, "@")
	if !is_mem {
		var op operand.Descriptor
		op, err = operand.Parse(word)
		if err != nil {
			return
		}
		code, err = op.Encode()
		return
	}

	if !strings.HasPrefix(width_text, "m") || len(width_text) < 2 || len(address_text) == 0 {
		err = operand.ErrParse{Text: word, Err: operand.ErrSyntaxInvalid}
		return
	}

	width, err := asm.byteOf(width_text[1:])
	if err != nil {
		return
	}

	address, label, err := asm.valueOf(address_text)
	if err != nil {
		return
	}

	code, err = operand.Memory{Width: int(width), Address: address}.Encode()
	if err != nil {
		return
	}

	if len(label) != 0 {
		link = &Link{Offset: 1, Label: label}
	}

	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value uint32, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var value32 uint32
		var label string
		value32, label, err = asm.valueOf(str)
		if err != nil || len(label) != 0 {
			// Ignore non-integer equates. They may be registers
			// or something else.
			err = nil
			continue
		}
		pred[key] = starlark.MakeInt(int(value32))
	}
	for key, address := range asm.Label {
		pred[key] = starlark.MakeInt(address)
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok || st_int64 > 0xffffffff || st_int64 < -int64(0x80000000) {
		err = ErrParseExpression(expr)
		return
	}
	value = uint32(st_int64)
	return
}

var parenRegexp = regexp.MustCompile(`\$\([^\$]*\)`)

// parseLine parses a single line of words, handling equates, labels, and
// macro expansion. Remaining words are a statement.
func (asm *Assembler) parseLine(words []string, lineno int) (out []string, err error) {
	// Set line number and address.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)
	asm.Equate["HERE"] = fmt.Sprintf("%#x", asm.address)

	// Do $() evaluations
	for n, word := range words {
		if isString(word) {
			continue
		}
		words[n] = parenRegexp.ReplaceAllStringFunc(word, func(str string) string {
			value, _err := asm.parenEval(str[2 : len(str)-1])
			if _err != nil {
				err = _err
			}
			return fmt.Sprintf("%#x", value)
		})
		if err != nil {
			return
		}
	}

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		return
	}

	for n, word := range words {
		// Check for equate next
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	for strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		_, ok := asm.Label[label]
		if ok || !isIdentifier(label) {
			err = ErrLabelDuplicate
			return
		}

		asm.Label[label] = asm.address
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	// .macro processing
	macro, ok := asm.Macro[words[0]]
	if ok {
		name := words[0]

		args := words[1:]
		if len(args) != len(macro.Args) {
			err = ErrMacroSyntax
			return
		}
		// Turn args into equs
		old_equate := maps.Clone(asm.Equate)
		for n, arg := range macro.Args {
			asm.Equate[arg] = args[n]
		}
		defer func() { asm.Equate = old_equate }()

		// Local labels are unique to each expansion.
		asm.expansions++
		local := fmt.Sprintf("%v_%v_", name, asm.expansions)

		for n, line := range macro.Lines {
			lineno := macro.LineNo + n

			var macro_words []string
			macro_words, err = splitWords(line)
			for w, word := range macro_words {
				// Quoted literals keep their '%' characters.
				if isString(word) || strings.HasPrefix(word, "'") {
					continue
				}
				macro_words[w] = strings.ReplaceAll(word, "%", local)
			}
			if err == nil {
				macro_words, err = asm.parseLine(macro_words, lineno)
			}
			if err == nil {
				err = asm.parseWords(macro_words, lineno)
			}
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}
		}

		return
	}

	out = words

	return
}

// emit appends a statement at the current address.
func (asm *Assembler) emit(lineno int, words []string, code []byte, links []Link) (err error) {
	if len(code) == 0 {
		return
	}

	if asm.address+len(code) > 1<<32 {
		err = ErrValueRange
		return
	}

	asm.Statements = append(asm.Statements, Statement{
		LineNo:  lineno,
		Address: asm.address,
		Words:   words,
		Bytes:   code,
		Links:   links,
	})
	asm.address += len(code)

	return
}

// parseWords evaluates the words of a statement.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	// no-op
	if len(words) == 0 {
		return
	}

	initial_words := slices.Clone(words)
	args := words[1:]

	switch words[0] {
	case ".byte", ".ascii", ".asciz":
		if len(args) == 0 {
			err = ErrOpcodeValueMissing
			return
		}
		if words[0] != ".byte" {
			for _, arg := range args {
				if !isString(arg) {
					err = ErrParseNumber(arg)
					return
				}
			}
		}
		var data []byte
		data, err = asm.bytesOf(args)
		if err != nil {
			return
		}
		if words[0] == ".asciz" {
			data = append(data, 0)
		}
		err = asm.emit(lineno, initial_words, data, nil)
		return
	case ".org":
		if len(args) != 1 {
			err = ErrOpcodeValueMissing
			return
		}
		var address uint32
		var label string
		address, label, err = asm.valueOf(args[0])
		if err != nil {
			return
		}
		if len(label) != 0 {
			err = ErrLabelMissing(label)
			return
		}
		if int(address) < asm.address {
			err = ErrOrgBackwards
			return
		}
		asm.address = int(address)
		return
	}

	code, ok := LookupMnemonic(words[0])
	if !ok {
		err = ErrOpcodeInvalid
		return
	}
	inst := instructions[code]

	data := []byte{byte(code)}
	var links []Link

	switch inst.Format {
	case FORMAT_NONE:
		if len(args) != 0 {
			err = ErrOpcodeExtraArgs
			return
		}
	case FORMAT_BYTE:
		if len(args) == 0 {
			err = ErrOpcodeValueMissing
			return
		}
		if len(args) > 1 {
			err = ErrOpcodeExtraArgs
			return
		}
		var value byte
		value, err = asm.byteOf(args[0])
		if err != nil {
			return
		}
		data = append(data, value)
	case FORMAT_STRING:
		if len(args) == 0 {
			err = ErrOpcodeValueMissing
			return
		}
		var str []byte
		str, err = asm.bytesOf(args)
		if err != nil {
			return
		}
		if slices.Contains(str, 0) {
			err = ErrStringZero
			return
		}
		data = append(data, str...)
		data = append(data, 0)
	case FORMAT_OPERAND:
		if len(args) < inst.Operands {
			err = ErrOpcodeValueMissing
			return
		}
		if len(args) > inst.Operands {
			err = ErrOpcodeExtraArgs
			return
		}
		for _, arg := range args {
			var op []byte
			var link *Link
			op, link, err = asm.operandOf(arg)
			if err != nil {
				return
			}
			if link != nil {
				link.Offset += len(data)
				links = append(links, *link)
			}
			data = append(data, op...)
		}
	}

	err = asm.emit(lineno, initial_words, data, links)

	return
}

// link patches forward label references.
func (asm *Assembler) link() (err error) {
	for n := range asm.Statements {
		st := &asm.Statements[n]
		for _, link := range st.Links {
			address, ok := asm.Label[link.Label]
			if !ok {
				err = &ErrSyntax{LineNo: st.LineNo, Line: strings.Join(st.Words, " "), Err: ErrLabelMissing(link.Label)}
				return
			}
			binary.BigEndian.PutUint32(st.Bytes[link.Offset:], uint32(address))
		}
	}

	return
}

// Parse parses an input stream into a Program.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {

	scanner := bufio.NewScanner(input)

	var line string
	var lineno int
	var macro *Macro

	defer func() {
		if err != nil {
			if _, ok := err.(*ErrSyntax); !ok {
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
			}
		}
	}()

	asm.Label = make(map[string]int, 16)
	asm.Statements = asm.Statements[:0]
	asm.Macro = make(map[string](*Macro))
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}
	asm.address = 0
	asm.expansions = 0

	for scanner.Scan() {
		line = scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, line)
		}

		var words []string
		words, err = splitWords(line)
		if err != nil {
			return
		}

		// .macro NAME arg...
		if len(words) > 0 && words[0] == ".macro" {
			if macro != nil {
				err = ErrMacroNesting
				return
			}
			if len(words) < 2 {
				err = ErrMacroSyntax
				return
			}
			_, ok := asm.Macro[words[1]]
			if ok {
				err = ErrMacroDuplicate
				return
			}
			macro = &Macro{
				LineNo: lineno + 1,
			}
			if len(words) > 2 {
				macro.Args = words[2:]
			}
			asm.Macro[words[1]] = macro
			continue
		}

		if len(words) > 0 && words[0] == ".endm" {
			if macro == nil {
				err = ErrMacroLonelyEndm
				return
			}
			macro = nil
			continue
		}

		if macro != nil {
			macro.Lines = append(macro.Lines, strings.Join(words, " "))
			continue
		}

		words, err = asm.parseLine(words, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	if macro != nil {
		err = ErrMacroLonely
		return
	}

	err = asm.link()
	if err != nil {
		return
	}

	prog = &Program{
		Statements: slices.Clone(asm.Statements),
		Labels:     maps.Clone(asm.Label),
	}

	return
}
