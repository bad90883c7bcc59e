package hir

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"mirbuild/internal/diag"
	"mirbuild/internal/source"
	"mirbuild/internal/types"
)

// DecodeError reports malformed input at a source position.
type DecodeError struct {
	Code diag.Code
	Span source.Span
	Msg  string
}

func (e *DecodeError) Error() string {
	return "hir: " + e.Msg
}

type rawSpan struct {
	set        bool
	start, end uint32
}

func (s *rawSpan) UnmarshalJSON(data []byte) error {
	var pair []uint32
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 || pair[0] > pair[1] {
		return fmt.Errorf("span must be [start, end] with start <= end, got %v", pair)
	}
	*s = rawSpan{set: true, start: pair[0], end: pair[1]}
	return nil
}

type rawModule struct {
	Module  string      `json:"module"`
	Structs []rawStruct `json:"structs"`
	Funcs   []rawFunc   `json:"funcs"`
}

type rawStruct struct {
	Name   string     `json:"name"`
	Drop   bool       `json:"drop"`
	Fields []rawField `json:"fields"`
}

type rawField struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type rawFunc struct {
	Name   string     `json:"name"`
	Span   rawSpan    `json:"span"`
	Params []rawParam `json:"params"`
	Result string     `json:"result"`
	Body   *rawBlock  `json:"body"`
}

type rawParam struct {
	Name string  `json:"name"`
	Type string  `json:"type"`
	Span rawSpan `json:"span"`
}

type rawBlock struct {
	Span  rawSpan   `json:"span"`
	Stmts []rawStmt `json:"stmts"`
	Expr  *rawExpr  `json:"expr"`
}

type rawStmt struct {
	Kind    string      `json:"kind"`
	Span    rawSpan     `json:"span"`
	Pattern *rawPattern `json:"pattern"`
	Init    *rawExpr    `json:"init"`
	Expr    *rawExpr    `json:"expr"`
}

type rawPattern struct {
	Kind  string        `json:"kind"`
	Span  rawSpan       `json:"span"`
	Name  string        `json:"name"`
	Type  string        `json:"type"`
	Mut   bool          `json:"mut"`
	Elems []*rawPattern `json:"elems"`
}

type rawExpr struct {
	Kind    string          `json:"kind"`
	Type    string          `json:"type"`
	Span    rawSpan         `json:"span"`
	Value   json.RawMessage `json:"value"`
	Name    string          `json:"name"`
	Op      string          `json:"op"`
	Label   string          `json:"label"`
	Operand *rawExpr        `json:"operand"`
	Left    *rawExpr        `json:"left"`
	Right   *rawExpr        `json:"right"`
	LHS     *rawExpr        `json:"lhs"`
	RHS     *rawExpr        `json:"rhs"`
	Object  *rawExpr        `json:"object"`
	Index   *rawExpr        `json:"index"`
	Args    []*rawExpr      `json:"args"`
	Elems   []*rawExpr      `json:"elems"`
	Cond    *rawExpr        `json:"cond"`
	Then    *rawExpr        `json:"then"`
	Else    *rawExpr        `json:"else"`
	Expr    *rawExpr        `json:"expr"`
	Block   *rawBlock       `json:"block"`
	Body    *rawBlock       `json:"body"`
}

type bindingInfo struct {
	id BindingID
	ty types.TypeID
}

type decoder struct {
	in          *types.Interner
	file        source.FileID
	nextExtent  uint32
	nextBinding uint32
	frames      []map[string]bindingInfo
}

// Decode parses the JSON form of a module. Struct declarations are
// registered in in; spans are attributed to file.
func Decode(data []byte, in *types.Interner, file source.FileID) (*Module, error) {
	var raw rawModule
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return nil, &DecodeError{Code: diag.HirMalformed, Span: source.Span{File: file}, Msg: err.Error()}
	}

	d := &decoder{in: in, file: file}
	if err := d.structs(raw.Structs); err != nil {
		return nil, err
	}

	m := &Module{Name: normName(raw.Module), File: file}
	seen := make(map[string]struct{}, len(raw.Funcs))
	for i := range raw.Funcs {
		rf := &raw.Funcs[i]
		name := normName(rf.Name)
		if _, dup := seen[name]; dup {
			return nil, d.errorf(diag.HirDuplicateFunc, rf.Span, "function %q defined twice", name)
		}
		seen[name] = struct{}{}
		fn, err := d.function(rf)
		if err != nil {
			return nil, fmt.Errorf("func %s: %w", name, err)
		}
		fn.ID = FuncID(len(m.Funcs))
		m.Funcs = append(m.Funcs, fn)
	}
	return m, nil
}

// normName puts identifiers and labels in NFC so that visually equal names
// resolve to the same binding.
func normName(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

func (d *decoder) span(s rawSpan) source.Span {
	if !s.set {
		return source.Span{File: d.file}
	}
	return source.Span{File: d.file, Start: s.start, End: s.end}
}

func (d *decoder) errorf(code diag.Code, s rawSpan, format string, args ...any) error {
	return &DecodeError{Code: code, Span: d.span(s), Msg: fmt.Sprintf(format, args...)}
}

func (d *decoder) typeOf(s string, at rawSpan) (types.TypeID, error) {
	id, err := d.in.Parse(s)
	if err != nil {
		return types.NoTypeID, d.errorf(diag.HirUnknownType, at, "%v", err)
	}
	return id, nil
}

func (d *decoder) structs(raw []rawStruct) error {
	ids := make([]types.TypeID, len(raw))
	for i, rs := range raw {
		id, err := d.in.DeclareStruct(normName(rs.Name), rs.Drop)
		if err != nil {
			return &DecodeError{Code: diag.HirMalformed, Span: source.Span{File: d.file}, Msg: err.Error()}
		}
		ids[i] = id
	}
	for i, rs := range raw {
		fields := make([]types.Field, 0, len(rs.Fields))
		for _, f := range rs.Fields {
			ty, err := d.typeOf(f.Type, rawSpan{})
			if err != nil {
				return fmt.Errorf("struct %s: %w", rs.Name, err)
			}
			fields = append(fields, types.Field{Name: normName(f.Name), Type: ty})
		}
		d.in.SetStructFields(ids[i], fields)
	}
	return nil
}

func (d *decoder) extent() ExtentID {
	d.nextExtent++
	return ExtentID(d.nextExtent)
}

func (d *decoder) push() {
	d.frames = append(d.frames, make(map[string]bindingInfo))
}

func (d *decoder) pop() {
	d.frames = d.frames[:len(d.frames)-1]
}

func (d *decoder) bind(name string, ty types.TypeID) BindingID {
	d.nextBinding++
	id := BindingID(d.nextBinding)
	d.frames[len(d.frames)-1][name] = bindingInfo{id: id, ty: ty}
	return id
}

func (d *decoder) lookup(name string) (bindingInfo, bool) {
	for i := len(d.frames) - 1; i >= 0; i-- {
		if b, ok := d.frames[i][name]; ok {
			return b, true
		}
	}
	return bindingInfo{}, false
}

func (d *decoder) function(rf *rawFunc) (*Func, error) {
	d.nextExtent, d.nextBinding = 0, 0
	d.frames = d.frames[:0]

	fn := &Func{Name: normName(rf.Name), Span: d.span(rf.Span)}
	fn.Extent = d.extent()

	d.push()
	defer d.pop()
	for _, rp := range rf.Params {
		ty, err := d.typeOf(rp.Type, rp.Span)
		if err != nil {
			return nil, err
		}
		name := normName(rp.Name)
		fn.Params = append(fn.Params, Param{Name: name, Binding: d.bind(name, ty), Type: ty, Span: d.span(rp.Span)})
	}

	fn.Result = d.in.Builtins().Unit
	if rf.Result != "" {
		ty, err := d.typeOf(rf.Result, rf.Span)
		if err != nil {
			return nil, err
		}
		fn.Result = ty
	}

	if rf.Body == nil {
		return nil, d.errorf(diag.HirMalformed, rf.Span, "missing body")
	}
	body, err := d.block(rf.Body)
	if err != nil {
		return nil, err
	}
	fn.Body = body
	fn.Extents = d.nextExtent + 1
	fn.Bindings = d.nextBinding + 1
	return fn, nil
}

func (d *decoder) block(rb *rawBlock) (*Block, error) {
	b := &Block{Extent: d.extent(), Span: d.span(rb.Span)}
	d.push()
	defer d.pop()

	for i := range rb.Stmts {
		st, err := d.stmt(&rb.Stmts[i])
		if err != nil {
			return nil, err
		}
		b.Stmts = append(b.Stmts, st)
	}
	if rb.Expr != nil {
		tail, err := d.expr(rb.Expr)
		if err != nil {
			return nil, err
		}
		b.Expr = tail
	}
	return b, nil
}

func (d *decoder) stmt(rs *rawStmt) (Stmt, error) {
	sp := d.span(rs.Span)
	switch rs.Kind {
	case "expr":
		ext := d.extent()
		e, err := d.required(rs.Expr, rs.Span, "expression statement")
		if err != nil {
			return Stmt{}, err
		}
		return Stmt{Kind: StmtExpr, Span: sp, Data: ExprStmtData{Extent: ext, Expr: e}}, nil

	case "let":
		if rs.Pattern == nil {
			return Stmt{}, d.errorf(diag.HirMalformed, rs.Span, "let without pattern")
		}
		data := LetData{Remainder: d.extent(), InitExtent: d.extent()}
		hint := types.NoTypeID
		if rs.Init != nil {
			// the initializer cannot see the bindings it introduces
			init, err := d.expr(rs.Init)
			if err != nil {
				return Stmt{}, err
			}
			data.Init = init
			hint = init.Type
		}
		pat, err := d.pattern(rs.Pattern, hint)
		if err != nil {
			return Stmt{}, err
		}
		data.Pattern = pat
		return Stmt{Kind: StmtLet, Span: sp, Data: data}, nil

	default:
		return Stmt{}, d.errorf(diag.HirMalformed, rs.Span, "unknown statement kind %q", rs.Kind)
	}
}

func (d *decoder) pattern(rp *rawPattern, hint types.TypeID) (*Pattern, error) {
	p := &Pattern{Span: d.span(rp.Span), Type: hint}
	if rp.Type != "" {
		ty, err := d.typeOf(rp.Type, rp.Span)
		if err != nil {
			return nil, err
		}
		p.Type = ty
	}

	switch rp.Kind {
	case "bind", "binding":
		name := normName(rp.Name)
		if name == "" {
			return nil, d.errorf(diag.HirMalformed, rp.Span, "binding pattern without name")
		}
		if p.Type == types.NoTypeID {
			return nil, d.errorf(diag.HirUnknownType, rp.Span, "cannot infer the type of %q; add \"type\"", name)
		}
		p.Kind = PatBinding
		p.Name = name
		p.Mutable = rp.Mut
		p.Binding = d.bind(name, p.Type)

	case "wild", "_":
		p.Kind = PatWild

	case "tuple":
		p.Kind = PatTuple
		elemHints := d.in.TupleElems(p.Type)
		if p.Type != types.NoTypeID && len(elemHints) != len(rp.Elems) {
			return nil, d.errorf(diag.HirMalformed, rp.Span, "tuple pattern has %d elements, type %s has %d",
				len(rp.Elems), d.in.Format(p.Type), len(elemHints))
		}
		elemTypes := make([]types.TypeID, len(rp.Elems))
		for i, re := range rp.Elems {
			h := types.NoTypeID
			if i < len(elemHints) {
				h = elemHints[i]
			}
			ep, err := d.pattern(re, h)
			if err != nil {
				return nil, err
			}
			p.Elems = append(p.Elems, ep)
			elemTypes[i] = ep.Type
		}
		if p.Type == types.NoTypeID {
			p.Type = d.in.Tuple(elemTypes...)
		}

	default:
		return nil, d.errorf(diag.HirMalformed, rp.Span, "unknown pattern kind %q", rp.Kind)
	}
	return p, nil
}

func (d *decoder) required(re *rawExpr, at rawSpan, what string) (*Expr, error) {
	if re == nil {
		return nil, d.errorf(diag.HirMalformed, at, "%s: missing operand", what)
	}
	return d.expr(re)
}

func (d *decoder) expr(re *rawExpr) (*Expr, error) {
	e, err := d.exprKind(re)
	if err != nil {
		return nil, err
	}
	if re.Type != "" {
		ty, err := d.typeOf(re.Type, re.Span)
		if err != nil {
			return nil, err
		}
		e.Type = ty
	}
	return e, nil
}

func (d *decoder) exprKind(re *rawExpr) (*Expr, error) {
	b := d.in.Builtins()
	e := &Expr{Span: d.span(re.Span), Type: b.Unit}

	switch re.Kind {
	case "lit", "literal":
		lit, ty, err := d.literal(re)
		if err != nil {
			return nil, err
		}
		e.Kind, e.Data, e.Type = ExprLiteral, lit, ty

	case "var":
		name := normName(re.Name)
		info, ok := d.lookup(name)
		if !ok {
			return nil, d.errorf(diag.HirUnknownVariable, re.Span, "unknown variable %q", name)
		}
		e.Kind, e.Type = ExprVarRef, info.ty
		e.Data = VarRefData{Name: name, Binding: info.id}

	case "unary":
		op, ok := ParseUnaryOp(re.Op)
		if !ok {
			return nil, d.errorf(diag.HirMalformed, re.Span, "unknown unary operator %q", re.Op)
		}
		operand, err := d.required(re.Operand, re.Span, "unary")
		if err != nil {
			return nil, err
		}
		e.Kind, e.Data = ExprUnary, UnaryData{Op: op, Operand: operand}
		switch op {
		case UnaryRef, UnaryRefMut:
			e.Type = d.in.Intern(types.MakeReference(operand.Type, op == UnaryRefMut))
		case UnaryDeref:
			tt, _ := d.in.Lookup(operand.Type)
			if tt.Kind != types.KindReference && tt.Kind != types.KindOwn {
				return nil, d.errorf(diag.HirMalformed, re.Span, "cannot dereference %s", d.in.Format(operand.Type))
			}
			e.Type = tt.Elem
		default:
			e.Type = operand.Type
		}

	case "binary":
		op, ok := ParseBinaryOp(re.Op)
		if !ok {
			return nil, d.errorf(diag.HirMalformed, re.Span, "unknown binary operator %q", re.Op)
		}
		left, err := d.required(re.Left, re.Span, "binary")
		if err != nil {
			return nil, err
		}
		right, err := d.required(re.Right, re.Span, "binary")
		if err != nil {
			return nil, err
		}
		e.Kind, e.Data = ExprBinary, BinaryData{Op: op, Left: left, Right: right}
		e.Type = left.Type
		if op.IsComparison() || op.IsLogical() {
			e.Type = b.Bool
		}

	case "call":
		args := make([]*Expr, 0, len(re.Args))
		for _, ra := range re.Args {
			a, err := d.expr(ra)
			if err != nil {
				return nil, err
			}
			args = append(args, a)
		}
		e.Kind, e.Data = ExprCall, CallData{Callee: normName(re.Name), Args: args}

	case "field":
		obj, err := d.required(re.Object, re.Span, "field")
		if err != nil {
			return nil, err
		}
		name := normName(re.Name)
		idx, ty, ok := d.fieldOf(obj.Type, name)
		if !ok {
			return nil, d.errorf(diag.HirMalformed, re.Span, "type %s has no field %q", d.in.Format(obj.Type), name)
		}
		e.Kind, e.Type = ExprField, ty
		e.Data = FieldData{Object: obj, Name: name, Index: idx}

	case "index":
		obj, err := d.required(re.Object, re.Span, "index")
		if err != nil {
			return nil, err
		}
		idx, err := d.required(re.Index, re.Span, "index")
		if err != nil {
			return nil, err
		}
		tt, _ := d.in.Lookup(obj.Type)
		if tt.Kind != types.KindArray {
			return nil, d.errorf(diag.HirMalformed, re.Span, "cannot index %s", d.in.Format(obj.Type))
		}
		e.Kind, e.Type = ExprIndex, tt.Elem
		e.Data = IndexData{Object: obj, Index: idx}

	case "tuple":
		elems := make([]*Expr, 0, len(re.Elems))
		tys := make([]types.TypeID, 0, len(re.Elems))
		for _, r := range re.Elems {
			el, err := d.expr(r)
			if err != nil {
				return nil, err
			}
			elems = append(elems, el)
			tys = append(tys, el.Type)
		}
		e.Kind, e.Type = ExprTuple, d.in.Tuple(tys...)
		e.Data = TupleData{Elems: elems}

	case "block":
		if re.Block == nil {
			return nil, d.errorf(diag.HirMalformed, re.Span, "block expression without block")
		}
		blk, err := d.block(re.Block)
		if err != nil {
			return nil, err
		}
		e.Kind, e.Data = ExprBlock, BlockExprData{Block: blk}
		if blk.Expr != nil {
			e.Type = blk.Expr.Type
		}

	case "if":
		cond, err := d.required(re.Cond, re.Span, "if")
		if err != nil {
			return nil, err
		}
		then, err := d.required(re.Then, re.Span, "if")
		if err != nil {
			return nil, err
		}
		var els *Expr
		if re.Else != nil {
			if els, err = d.expr(re.Else); err != nil {
				return nil, err
			}
			e.Type = then.Type
		}
		e.Kind, e.Data = ExprIf, IfData{Cond: cond, Then: then, Else: els}

	case "loop", "while":
		data := LoopData{Label: normName(re.Label), Extent: d.extent()}
		if re.Kind == "while" {
			cond, err := d.required(re.Cond, re.Span, "while")
			if err != nil {
				return nil, err
			}
			data.Cond = cond
		}
		if re.Body == nil {
			return nil, d.errorf(diag.HirMalformed, re.Span, "%s without body", re.Kind)
		}
		body, err := d.block(re.Body)
		if err != nil {
			return nil, err
		}
		data.Body = body
		e.Kind, e.Data = ExprLoop, data

	case "scope":
		ext := d.extent()
		val, err := d.required(re.Expr, re.Span, "scope")
		if err != nil {
			return nil, err
		}
		e.Kind, e.Type = ExprScope, val.Type
		e.Data = ScopeData{Extent: ext, Value: val}

	case "assign", "assign_op":
		// right before left, matching evaluation order
		rhs, err := d.required(re.RHS, re.Span, re.Kind)
		if err != nil {
			return nil, err
		}
		lhs, err := d.required(re.LHS, re.Span, re.Kind)
		if err != nil {
			return nil, err
		}
		if re.Kind == "assign" {
			e.Kind, e.Data = ExprAssign, AssignData{LHS: lhs, RHS: rhs}
			break
		}
		op, ok := ParseBinaryOp(strings.TrimSuffix(re.Op, "="))
		if !ok || !op.IsCompoundable() {
			return nil, d.errorf(diag.HirMalformed, re.Span, "invalid compound assignment operator %q", re.Op)
		}
		e.Kind, e.Data = ExprAssignOp, AssignOpData{Op: op, LHS: lhs, RHS: rhs}

	case "break":
		e.Kind, e.Data = ExprBreak, BreakData{Label: normName(re.Label)}

	case "continue":
		e.Kind, e.Data = ExprContinue, ContinueData{Label: normName(re.Label)}

	case "return":
		var val *Expr
		if re.Expr != nil {
			v, err := d.expr(re.Expr)
			if err != nil {
				return nil, err
			}
			val = v
		}
		e.Kind, e.Data = ExprReturn, ReturnData{Value: val}

	default:
		return nil, d.errorf(diag.HirMalformed, re.Span, "unknown expression kind %q", re.Kind)
	}
	return e, nil
}

func (d *decoder) fieldOf(obj types.TypeID, name string) (int, types.TypeID, bool) {
	if info := d.in.StructInfo(obj); info != nil {
		i := info.FieldIndex(name)
		if i < 0 {
			return 0, types.NoTypeID, false
		}
		return i, info.Fields[i].Type, true
	}
	if elems := d.in.TupleElems(obj); elems != nil {
		i, err := strconv.Atoi(name)
		if err != nil || i < 0 || i >= len(elems) {
			return 0, types.NoTypeID, false
		}
		return i, elems[i], true
	}
	return 0, types.NoTypeID, false
}

var errBadLiteral = errors.New("literal value must be null, a bool, a number or a string")

func (d *decoder) literal(re *rawExpr) (LiteralData, types.TypeID, error) {
	b := d.in.Builtins()
	raw := bytes.TrimSpace(re.Value)
	switch {
	case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
		return LiteralData{Kind: LiteralUnit}, b.Unit, nil
	case bytes.Equal(raw, []byte("true")), bytes.Equal(raw, []byte("false")):
		return LiteralData{Kind: LiteralBool, BoolValue: raw[0] == 't'}, b.Bool, nil
	case raw[0] == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return LiteralData{}, types.NoTypeID, d.errorf(diag.HirMalformed, re.Span, "%v", err)
		}
		return LiteralData{Kind: LiteralString, StringValue: s}, b.String, nil
	case bytes.ContainsAny(raw, ".eE"):
		f, err := strconv.ParseFloat(string(raw), 64)
		if err != nil {
			return LiteralData{}, types.NoTypeID, d.errorf(diag.HirMalformed, re.Span, "%v", err)
		}
		return LiteralData{Kind: LiteralFloat, FloatValue: f}, b.Float, nil
	default:
		n, err := strconv.ParseInt(string(raw), 10, 64)
		if err != nil {
			return LiteralData{}, types.NoTypeID, d.errorf(diag.HirMalformed, re.Span, "%v: %s", errBadLiteral, raw)
		}
		return LiteralData{Kind: LiteralInt, IntValue: n}, b.Int, nil
	}
}
