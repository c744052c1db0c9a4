package playerjs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/dop251/goja"
	"github.com/robertkrimen/otto"
)

const (
	EngineGoja = "goja"
	EngineOtto = "otto"

	DefaultScriptTimeout = 5 * time.Second
)

// ScriptTransformEngine evaluates a self-contained script and returns its
// completion value as a string. Every call runs in a fresh interpreter.
type ScriptTransformEngine interface {
	Evaluate(ctx context.Context, source string) (string, error)
}

// NewEngine returns the engine registered under name; "" selects goja.
func NewEngine(name string, timeout time.Duration) (ScriptTransformEngine, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", EngineGoja:
		return &GojaEngine{Timeout: timeout}, nil
	case EngineOtto:
		return &OttoEngine{Timeout: timeout}, nil
	default:
		return nil, fmt.Errorf("unknown script engine %q", name)
	}
}

type GojaEngine struct {
	Timeout time.Duration
}

func (e *GojaEngine) Evaluate(ctx context.Context, source string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	vm := goja.New()
	timer := time.AfterFunc(scriptTimeout(e.Timeout), func() {
		vm.Interrupt("script timeout")
	})
	defer timer.Stop()
	stop := context.AfterFunc(ctx, func() {
		vm.Interrupt(ctx.Err())
	})
	defer stop()

	v, err := vm.RunString(source)
	if err != nil {
		return "", err
	}
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return "", errors.New("script returned no value")
	}
	s, ok := v.Export().(string)
	if !ok {
		return "", fmt.Errorf("script returned %s, want string", v.ExportType())
	}
	return s, nil
}

var errOttoHalt = errors.New("script interrupted")

// varDeclarations rewrites const and let declarations, which the ES5
// interpreter does not accept, to var. String and template literals are
// copied untouched.
func varDeclarations(source string) string {
	text := []rune(source)
	var b strings.Builder
	b.Grow(len(source))
	for i := 0; i < len(text); i++ {
		switch c := text[i]; {
		case c == '"' || c == '\'' || c == '`':
			end, ok := skipString(text, i)
			if !ok {
				end = len(text)
			}
			b.WriteString(string(text[i:end]))
			i = end - 1
		case declKeywordAt(text, i, "const"):
			b.WriteString("var")
			i += len("const") - 1
		case declKeywordAt(text, i, "let"):
			b.WriteString("var")
			i += len("let") - 1
		default:
			b.WriteRune(c)
		}
	}
	return b.String()
}

func declKeywordAt(text []rune, i int, keyword string) bool {
	if i > 0 && (isIdentRune(text[i-1]) || text[i-1] == '.') {
		return false
	}
	end := i + len(keyword)
	return hasPrefixAt(text, i, keyword) && end < len(text) && unicode.IsSpace(text[end])
}

func isIdentRune(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

type OttoEngine struct {
	Timeout time.Duration
}

func (e *OttoEngine) Evaluate(ctx context.Context, source string) (out string, err error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	source = varDeclarations(source)

	vm := otto.New()
	vm.Interrupt = make(chan func(), 1)
	done := make(chan struct{})
	defer close(done)
	go func() {
		timer := time.NewTimer(scriptTimeout(e.Timeout))
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
		case <-done:
			return
		}
		vm.Interrupt <- func() { panic(errOttoHalt) }
	}()
	defer func() {
		if r := recover(); r != nil {
			if r != errOttoHalt {
				panic(r)
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				err = ctxErr
			} else {
				err = errOttoHalt
			}
		}
	}()

	v, err := vm.Run(source)
	if err != nil {
		return "", err
	}
	if !v.IsString() {
		return "", fmt.Errorf("script returned non-string value %q", v.String())
	}
	return v.String(), nil
}

func scriptTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return DefaultScriptTimeout
	}
	return d
}
