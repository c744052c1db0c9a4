package playerjs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// Kind names a transform and its memo.
type Kind string

const (
	KindN         Kind = "n"
	KindSignature Kind = "sig"
)

// Executor runs extracted transforms and remembers every result for the
// lifetime of the process.
type Executor struct {
	engine ScriptTransformEngine
	memos  map[Kind]*Memo
	logger *slog.Logger
}

func NewExecutor(engine ScriptTransformEngine, logger *slog.Logger) *Executor {
	if engine == nil {
		engine = &GojaEngine{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		engine: engine,
		memos: map[Kind]*Memo{
			KindN:         NewMemo(),
			KindSignature: NewMemo(),
		},
		logger: logger,
	}
}

// Memo exposes the memo of one kind.
func (e *Executor) Memo(kind Kind) *Memo {
	return e.memos[kind]
}

// DecryptN transforms a throttling parameter value.
func (e *Executor) DecryptN(ctx context.Context, bundle *Bundle, value string) (string, error) {
	return e.decrypt(ctx, KindN, bundle, value, (*Bundle).NTransform)
}

// DecryptSignature transforms a cipher signature value.
func (e *Executor) DecryptSignature(ctx context.Context, bundle *Bundle, value string) (string, error) {
	return e.decrypt(ctx, KindSignature, bundle, value, (*Bundle).CipherTransform)
}

func (e *Executor) decrypt(ctx context.Context, kind Kind, bundle *Bundle, value string, rule func(*Bundle) (Fragment, error)) (string, error) {
	memo := e.memos[kind]
	if out, ok := memo.Get(value); ok {
		return out, nil
	}
	if bundle == nil {
		return "", fmt.Errorf("%w: %s: no player script", ErrDecryptionFailed, kind)
	}
	fragment, err := rule(bundle)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrDecryptionFailed, kind, err)
	}

	source := fragment.Code + callExpression(fragment.Name, value)
	out, err := e.engine.Evaluate(ctx, source)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrDecryptionFailed, kind, err)
	}
	if out == "" || out == value {
		return "", fmt.Errorf("%w: %s: transform returned no new value", ErrDecryptionFailed, kind)
	}
	memo.Set(value, out)
	e.logger.Debug("decrypted value", "kind", string(kind), "player_url", bundle.URL)
	return out, nil
}

func callExpression(name, value string) string {
	quoted, _ := json.Marshal(value)
	return name + "(" + string(quoted) + ");"
}
