package hir

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"mirbuild/internal/types"
)

// Dump writes a readable tree of m, with extents and binding ids, to w.
func Dump(w io.Writer, m *Module, in *types.Interner) error {
	p := &printer{w: w, in: in}
	fmt.Fprintf(p, "module %s\n", m.Name)
	for _, fn := range m.Funcs {
		p.fn(fn)
	}
	return p.err
}

type printer struct {
	w      io.Writer
	in     *types.Interner
	indent int
	err    error
}

func (p *printer) Write(b []byte) (int, error) {
	if p.err != nil {
		return 0, p.err
	}
	n, err := p.w.Write(b)
	p.err = err
	return n, err
}

func (p *printer) line(format string, args ...any) {
	fmt.Fprintf(p, "%s%s\n", strings.Repeat("  ", p.indent), fmt.Sprintf(format, args...))
}

func (p *printer) ty(id types.TypeID) string {
	if p.in == nil {
		return "t" + strconv.FormatUint(uint64(id), 10)
	}
	return p.in.Format(id)
}

func (p *printer) fn(fn *Func) {
	params := make([]string, len(fn.Params))
	for i, prm := range fn.Params {
		params[i] = fmt.Sprintf("%s#%d: %s", prm.Name, prm.Binding, p.ty(prm.Type))
	}
	p.line("fn %s(%s) -> %s [e%d]", fn.Name, strings.Join(params, ", "), p.ty(fn.Result), fn.Extent)
	p.indent++
	p.block(fn.Body)
	p.indent--
}

func (p *printer) block(b *Block) {
	p.line("block [e%d]", b.Extent)
	p.indent++
	for i := range b.Stmts {
		p.stmt(&b.Stmts[i])
	}
	if b.Expr != nil {
		p.line("tail:")
		p.indent++
		p.expr(b.Expr)
		p.indent--
	}
	p.indent--
}

func (p *printer) stmt(s *Stmt) {
	switch data := s.Data.(type) {
	case ExprStmtData:
		p.line("stmt [e%d]", data.Extent)
		p.indent++
		p.expr(data.Expr)
		p.indent--
	case LetData:
		p.line("let %s [rem e%d, init e%d]", p.pattern(data.Pattern), data.Remainder, data.InitExtent)
		if data.Init != nil {
			p.indent++
			p.expr(data.Init)
			p.indent--
		}
	}
}

func (p *printer) pattern(pat *Pattern) string {
	switch pat.Kind {
	case PatBinding:
		mut := ""
		if pat.Mutable {
			mut = "mut "
		}
		return fmt.Sprintf("%s%s#%d: %s", mut, pat.Name, pat.Binding, p.ty(pat.Type))
	case PatTuple:
		parts := make([]string, len(pat.Elems))
		for i, e := range pat.Elems {
			parts[i] = p.pattern(e)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	default:
		return "_"
	}
}

func (p *printer) expr(e *Expr) {
	head := fmt.Sprintf("%s: %s", e.Kind, p.ty(e.Type))
	switch data := e.Data.(type) {
	case LiteralData:
		p.line("%s = %s", head, literalText(data))
	case VarRefData:
		p.line("%s %s#%d", head, data.Name, data.Binding)
	case UnaryData:
		p.line("%s %s", head, data.Op)
		p.children(data.Operand)
	case BinaryData:
		p.line("%s %s", head, data.Op)
		p.children(data.Left, data.Right)
	case CallData:
		p.line("%s %s", head, data.Callee)
		p.children(data.Args...)
	case FieldData:
		p.line("%s .%s", head, data.Name)
		p.children(data.Object)
	case IndexData:
		p.line("%s", head)
		p.children(data.Object, data.Index)
	case TupleData:
		p.line("%s", head)
		p.children(data.Elems...)
	case BlockExprData:
		p.line("%s", head)
		p.indent++
		p.block(data.Block)
		p.indent--
	case IfData:
		p.line("%s", head)
		p.children(data.Cond, data.Then, data.Else)
	case LoopData:
		label := ""
		if data.Label != "" {
			label = " '" + data.Label
		}
		p.line("%s%s [e%d]", head, label, data.Extent)
		if data.Cond != nil {
			p.children(data.Cond)
		}
		p.indent++
		p.block(data.Body)
		p.indent--
	case ScopeData:
		p.line("%s [e%d]", head, data.Extent)
		p.children(data.Value)
	case AssignData:
		p.line("%s", head)
		p.children(data.LHS, data.RHS)
	case AssignOpData:
		p.line("%s %s=", head, data.Op)
		p.children(data.LHS, data.RHS)
	case BreakData:
		p.line("%s%s", head, labelSuffix(data.Label))
	case ContinueData:
		p.line("%s%s", head, labelSuffix(data.Label))
	case ReturnData:
		p.line("%s", head)
		p.children(data.Value)
	default:
		p.line("%s", head)
	}
}

func (p *printer) children(es ...*Expr) {
	p.indent++
	for _, e := range es {
		if e != nil {
			p.expr(e)
		}
	}
	p.indent--
}

func labelSuffix(label string) string {
	if label == "" {
		return ""
	}
	return " '" + label
}

func literalText(l LiteralData) string {
	switch l.Kind {
	case LiteralInt:
		return strconv.FormatInt(l.IntValue, 10)
	case LiteralFloat:
		return strconv.FormatFloat(l.FloatValue, 'g', -1, 64)
	case LiteralBool:
		return strconv.FormatBool(l.BoolValue)
	case LiteralString:
		return strconv.Quote(l.StringValue)
	default:
		return "()"
	}
}
