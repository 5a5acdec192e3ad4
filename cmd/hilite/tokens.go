package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ava12/hilite/grammar"
	"github.com/ava12/hilite/lexer"
	"github.com/ava12/hilite/source"
)

var (
	keywordStyle = color.New(color.FgBlue, color.Bold)
	literalStyle = color.New(color.FgMagenta)
	stringStyle  = color.New(color.FgGreen)
	commentStyle = color.New(color.FgHiBlack)
	typeStyle    = color.New(color.FgCyan)
	titleStyle   = color.New(color.FgYellow, color.Bold)
	illegalStyle = color.New(color.FgRed, color.Bold)
	plainStyle   = color.New(color.FgWhite)
)

func categoryStyle(cat grammar.Category) *color.Color {
	switch cat {
	case grammar.Keyword, grammar.BuiltIn, grammar.Meta:
		return keywordStyle
	case grammar.Literal, grammar.Number:
		return literalStyle
	case grammar.String, grammar.Subst:
		return stringStyle
	case grammar.Comment, grammar.DocComment, grammar.DocTag:
		return commentStyle
	case grammar.Type, grammar.Params, grammar.TypeDef:
		return typeStyle
	case grammar.Title, grammar.Function, grammar.Class:
		return titleStyle
	case grammar.Illegal:
		return illegalStyle
	default:
		return plainStyle
	}
}

func (a *app) tokensCmd() *cobra.Command {
	var (
		lang     string
		asJson   bool
		timeout  time.Duration
		maxSteps int
	)

	cmd := &cobra.Command{
		Use:   "tokens <file|->",
		Short: "Print token tree of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, e := readInput(cmd, args[0])
			if e != nil {
				return e
			}
			opts := &lexer.Options{Timeout: timeout, MaxSteps: maxSteps}
			if lang == "" {
				lang, e = a.detect(cmd.Context(), text, opts)
				if e != nil {
					return e
				}
			}

			g, e := a.reg.Lookup(lang)
			if e != nil {
				return e
			}
			src := source.New(args[0], text)
			res, scanErr := a.reg.Scan(g.Name, text, opts)
			if scanErr != nil {
				a.log.Warn("scan truncated", zap.String("file", src.Name()), zap.Error(scanErr))
			}

			out := cmd.OutOrStdout()
			if asJson {
				return writeJson(out, makeScanDump(g.Name, src, res))
			}
			printTokens(out, src, res)
			return nil
		},
	}

	cmd.Flags().StringVarP(&lang, "lang", "l", "", "language name or alias, detected if omitted")
	cmd.Flags().BoolVarP(&asJson, "json", "j", false, "output JSON")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "scan time limit")
	cmd.Flags().IntVar(&maxSteps, "max-steps", 0, "scan step limit, 0 means proportional to text length")
	return cmd
}

func (a *app) detect(ctx context.Context, text string, opts *lexer.Options) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	scores, e := a.reg.Rank(ctx, text, nil, opts)
	if e != nil {
		return "", e
	}
	if len(scores) == 0 {
		return "", fmt.Errorf("no languages registered")
	}
	a.log.Debug("language detected", zap.String("language", scores[0].Name), zap.Int("relevance", scores[0].Relevance))
	return scores[0].Name, nil
}

// printTokens writes one token per line, nested tokens are indented.
func printTokens(w io.Writer, src *source.Source, res *lexer.Result) {
	text := src.Runes()
	lexer.Walk(res.Tokens, func(t *lexer.Token, depth int) bool {
		label := string(t.Category)
		if label == "" {
			label = "-"
		}
		fmt.Fprintf(w, "%s%s %d:%d %q\n", strings.Repeat("  ", depth), categoryStyle(t.Category).Sprint(label), t.Start, t.End, t.Text(text))
		return true
	})

	for _, m := range res.Illegal {
		line, col := src.LineCol(m.Start)
		fmt.Fprintf(w, "# illegal %q in %s at line %d col %d\n", src.Slice(m.Start, m.End), m.Mode, line, col)
	}
	if len(res.Unterminated) != 0 {
		fmt.Fprintf(w, "# unterminated: %s\n", strings.Join(res.Unterminated, ", "))
	}
	if res.Truncated {
		fmt.Fprintln(w, "# truncated")
	}
	fmt.Fprintf(w, "# relevance: %d\n", res.Relevance)
}

type tokenDump struct {
	Category grammar.Category `json:"category,omitempty"`
	Start    int              `json:"start"`
	End      int              `json:"end"`
	Text     string           `json:"text"`
	Children []tokenDump      `json:"children,omitempty"`
}

type illegalDump struct {
	Mode string `json:"mode"`
	Text string `json:"text"`
	Line int    `json:"line"`
	Col  int    `json:"col"`
}

type scanDump struct {
	File         string        `json:"file"`
	Language     string        `json:"language"`
	Relevance    int           `json:"relevance"`
	Truncated    bool          `json:"truncated,omitempty"`
	Illegal      []illegalDump `json:"illegal,omitempty"`
	Unterminated []string      `json:"unterminated,omitempty"`
	Tokens       []tokenDump   `json:"tokens"`
}

func makeScanDump(lang string, src *source.Source, res *lexer.Result) scanDump {
	d := scanDump{
		File:         src.Name(),
		Language:     lang,
		Relevance:    res.Relevance,
		Truncated:    res.Truncated,
		Unterminated: res.Unterminated,
		Tokens:       dumpTokens(src.Runes(), res.Tokens),
	}
	for _, m := range res.Illegal {
		line, col := src.LineCol(m.Start)
		d.Illegal = append(d.Illegal, illegalDump{m.Mode, src.Slice(m.Start, m.End), line, col})
	}
	return d
}

func dumpTokens(text []rune, tokens []*lexer.Token) []tokenDump {
	if len(tokens) == 0 {
		return nil
	}
	res := make([]tokenDump, len(tokens))
	for i, t := range tokens {
		res[i] = tokenDump{
			Category: t.Category,
			Start:    t.Start,
			End:      t.End,
			Text:     t.Text(text),
			Children: dumpTokens(text, t.Children),
		}
	}
	return res
}

func writeJson(w io.Writer, v any) error {
	content, e := json.MarshalIndent(v, "", "  ")
	if e != nil {
		return e
	}
	_, e = fmt.Fprintln(w, string(content))
	return e
}
