package playerjs

import "sync"

// Bundle is one downloaded player script. Fragments are extracted on first
// use and kept for the lifetime of the bundle.
type Bundle struct {
	URL    string
	Script string

	analyzerOnce sync.Once
	analyzer     *Analyzer

	tableOnce sync.Once
	table     Fragment
	tableErr  error

	cipherOnce sync.Once
	cipher     Fragment
	cipherErr  error

	nOnce sync.Once
	n     Fragment
	nErr  error
}

func NewBundle(url, script string) *Bundle {
	return &Bundle{URL: url, Script: script}
}

func (b *Bundle) analyze() *Analyzer {
	b.analyzerOnce.Do(func() {
		b.analyzer = NewAnalyzer(b.Script)
	})
	return b.analyzer
}

func (b *Bundle) GlobalTable() (Fragment, error) {
	b.tableOnce.Do(func() {
		b.table, b.tableErr = b.analyze().GlobalTable()
	})
	return b.table, b.tableErr
}

func (b *Bundle) CipherTransform() (Fragment, error) {
	b.cipherOnce.Do(func() {
		table, err := b.GlobalTable()
		if err != nil {
			b.cipherErr = &RuleError{Rule: RuleCipherTransform, Reason: "global table unavailable", Err: err}
			return
		}
		b.cipher, b.cipherErr = b.analyze().CipherTransform(table)
	})
	return b.cipher, b.cipherErr
}

func (b *Bundle) NTransform() (Fragment, error) {
	b.nOnce.Do(func() {
		table, err := b.GlobalTable()
		if err != nil {
			b.nErr = &RuleError{Rule: RuleNTransform, Reason: "global table unavailable", Err: err}
			return
		}
		b.n, b.nErr = b.analyze().NTransform(table)
	})
	return b.n, b.nErr
}
