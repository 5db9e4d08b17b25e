package parser

import (
	"strings"

	"github.com/mstgnz/filesql/coltype"
	"github.com/mstgnz/filesql/fault"
	"github.com/mstgnz/filesql/token"
	"github.com/mstgnz/filesql/value"
)

// Parser walks a pre-tokenized token buffer and produces Statements.
// Tokenize-then-parse, matching basic-sql's SqlParser: the whole input
// is tokenized up front rather than streamed.
type Parser struct {
	tokens []token.Token
	pos    int
}

// New tokenizes input and returns a Parser positioned at the start.
func New(input string) (*Parser, error) {
	toks, err := token.Tokenize(input)
	if err != nil {
		return nil, err
	}
	return &Parser{tokens: toks}, nil
}

// ParseAll parses every statement in the input until the token buffer
// is exhausted.
func (p *Parser) ParseAll() ([]Statement, error) {
	var statements []Statement
	for p.peek() != nil {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		statements = append(statements, stmt)
	}
	return statements, nil
}

func (p *Parser) hasInput() bool {
	return p.pos < len(p.tokens)
}

func (p *Parser) peek() *token.Token {
	if !p.hasInput() {
		return nil
	}
	return &p.tokens[p.pos]
}

func (p *Parser) read() *token.Token {
	t := p.peek()
	if t != nil {
		p.pos++
	}
	return t
}

func unexpectedToken(t token.Token) error {
	return fault.New(fault.UnexpectedToken, "unexpected token").
		WithContext("pos", t.Pos).
		WithContext("type", int(t.Type))
}

func unexpectedEnd() error {
	return fault.New(fault.UnexpectedEnd, "unexpected end of input")
}

func (p *Parser) readKeyword() (token.Keyword, error) {
	t := p.read()
	if t == nil {
		return 0, unexpectedEnd()
	}
	if t.Type != token.TKeyword {
		return 0, unexpectedToken(*t)
	}
	return t.Keyword, nil
}

func (p *Parser) expectKeyword(kw token.Keyword) error {
	got, err := p.readKeyword()
	if err != nil {
		return err
	}
	if got != kw {
		return fault.New(fault.UnexpectedToken, "unexpected keyword").
			WithContext("want", kw.String()).
			WithContext("got", got.String())
	}
	return nil
}

func (p *Parser) readIdentifier() (string, error) {
	t := p.read()
	if t == nil {
		return "", unexpectedEnd()
	}
	if t.Type != token.TIdentifier {
		return "", unexpectedToken(*t)
	}
	return t.Identifier, nil
}

// readTableName reads an identifier, enforces the length limit, and
// lower-cases it, matching basic-sql's read_table_name.
func (p *Parser) readTableName() (string, error) {
	id, err := p.readIdentifier()
	if err != nil {
		return "", err
	}
	if len(id) > TableNameMaxLength {
		return "", fault.New(fault.LimitReached, "table name too long").WithContext("name", id)
	}
	return strings.ToLower(id), nil
}

// readColumnName reads an identifier, enforces the length limit, and
// lower-cases it.
//
// basic-sql's own read_column_name leaves a "TODO: convert to lower
// case" unimplemented, so only table names get folded; this parser
// folds column names too (see DESIGN.md Open Question 2).
func (p *Parser) readColumnName() (string, error) {
	id, err := p.readIdentifier()
	if err != nil {
		return "", err
	}
	if len(id) > ColumnNameMaxLength {
		return "", fault.New(fault.LimitReached, "column name too long").WithContext("name", id)
	}
	return strings.ToLower(id), nil
}

func (p *Parser) readDatabaseName() (string, error) {
	id, err := p.readIdentifier()
	if err != nil {
		return "", err
	}
	if len(id) > DatabaseNameMaxSize {
		return "", fault.New(fault.LimitReached, "database name too long").WithContext("name", id)
	}
	return strings.ToLower(id), nil
}

func (p *Parser) readSemicolon() error {
	t := p.read()
	if t == nil {
		return unexpectedEnd()
	}
	if t.Type != token.TSemicolon {
		return unexpectedToken(*t)
	}
	return nil
}

func (p *Parser) readLeftParen() error {
	t := p.read()
	if t == nil {
		return unexpectedEnd()
	}
	if t.Type != token.TLeftParen {
		return unexpectedToken(*t)
	}
	return nil
}

func (p *Parser) readRightParen() error {
	t := p.read()
	if t == nil {
		return unexpectedEnd()
	}
	if t.Type != token.TRightParen {
		return unexpectedToken(*t)
	}
	return nil
}

func (p *Parser) readIntegerLiteral() (int32, error) {
	t := p.read()
	if t == nil {
		return 0, unexpectedEnd()
	}
	if t.Type != token.TIntegerLiteral {
		return 0, unexpectedToken(*t)
	}
	return t.IntLit, nil
}

// readType parses the <type> grammar production: a bare TYPE token for
// INT/FLOAT, or TYPE "(" INTEGER_LITERAL ")" for VARCHAR/CHAR. The size
// suffix is parsed here, not in the tokenizer (see the `token` entry in
// DESIGN.md).
func (p *Parser) readType() (coltype.Type, error) {
	t := p.read()
	if t == nil {
		return coltype.Type{}, unexpectedEnd()
	}
	if t.Type != token.TType {
		return coltype.Type{}, unexpectedToken(*t)
	}

	if t.ColType == coltype.Varchar || t.ColType == coltype.Char {
		if err := p.readLeftParen(); err != nil {
			return coltype.Type{}, err
		}
		size, err := p.readIntegerLiteral()
		if err != nil {
			return coltype.Type{}, err
		}
		if err := p.readRightParen(); err != nil {
			return coltype.Type{}, err
		}
		return coltype.NewSized(t.ColType, uint8(size)), nil
	}
	return coltype.NewFixed(t.ColType), nil
}

func (p *Parser) readStringLiteral() (string, error) {
	t := p.read()
	if t == nil {
		return "", unexpectedEnd()
	}
	if t.Type != token.TStringLiteral {
		return "", unexpectedToken(*t)
	}
	return t.StrLit, nil
}

func (p *Parser) readFloatLiteral() (float32, error) {
	t := p.read()
	if t == nil {
		return 0, unexpectedEnd()
	}
	if t.Type != token.TFloatLiteral {
		return 0, unexpectedToken(*t)
	}
	return t.FloatLit, nil
}

func (p *Parser) readValue() (value.Value, error) {
	t := p.peek()
	if t == nil {
		return value.Value{}, unexpectedEnd()
	}
	switch t.Type {
	case token.TStringLiteral:
		s, err := p.readStringLiteral()
		if err != nil {
			return value.Value{}, err
		}
		return value.NewString(s), nil
	case token.TFloatLiteral:
		f, err := p.readFloatLiteral()
		if err != nil {
			return value.Value{}, err
		}
		return value.NewFloat(f), nil
	case token.TIntegerLiteral:
		i, err := p.readIntegerLiteral()
		if err != nil {
			return value.Value{}, err
		}
		return value.NewInteger(i), nil
	default:
		return value.Value{}, unexpectedToken(*t)
	}
}

func (p *Parser) readOperator() (token.Operator, error) {
	t := p.read()
	if t == nil {
		return 0, unexpectedEnd()
	}
	if t.Type != token.TOperator {
		return 0, unexpectedToken(*t)
	}
	return t.Op, nil
}

func (p *Parser) readWhereClause() (WhereClause, error) {
	if err := p.expectKeyword(token.WHERE); err != nil {
		return WhereClause{}, err
	}
	col, err := p.readColumnName()
	if err != nil {
		return WhereClause{}, err
	}
	op, err := p.readOperator()
	if err != nil {
		return WhereClause{}, err
	}
	val, err := p.readValue()
	if err != nil {
		return WhereClause{}, err
	}
	return WhereClause{Column: col, Op: op, Value: val}, nil
}

func (p *Parser) peekIsKeyword(kw token.Keyword) bool {
	t := p.peek()
	return t != nil && t.Type == token.TKeyword && t.Keyword == kw
}

func (p *Parser) parseStatement() (Statement, error) {
	t := p.peek()
	if t == nil {
		return Statement{}, unexpectedEnd()
	}
	if t.Type != token.TKeyword {
		return Statement{}, unexpectedToken(*t)
	}

	switch t.Keyword {
	case token.CREATE:
		return p.parseCreate()
	case token.DROP:
		return p.parseDrop()
	case token.USE:
		return p.parseUse()
	case token.SELECT:
		return p.parseSelect()
	case token.ALTER:
		return p.parseAlter()
	case token.INSERT:
		return p.parseInsert()
	case token.UPDATE:
		return p.parseUpdate()
	case token.DELETE:
		return p.parseDelete()
	case token.BEGIN:
		return p.parseBegin()
	case token.COMMIT:
		return p.parseCommit()
	default:
		return Statement{}, unexpectedToken(*t)
	}
}

func (p *Parser) parseCreate() (Statement, error) {
	p.read() // CREATE
	kw, err := p.readKeyword()
	if err != nil {
		return Statement{}, err
	}
	switch kw {
	case token.DATABASE:
		name, err := p.readDatabaseName()
		if err != nil {
			return Statement{}, err
		}
		if err := p.readSemicolon(); err != nil {
			return Statement{}, err
		}
		return Statement{CreateDatabase: &CreateDatabase{Name: name}}, nil

	case token.TABLE:
		tableName, err := p.readTableName()
		if err != nil {
			return Statement{}, err
		}
		if err := p.readLeftParen(); err != nil {
			return Statement{}, err
		}
		cols, err := p.parseColumnDefList()
		if err != nil {
			return Statement{}, err
		}
		if err := p.readRightParen(); err != nil {
			return Statement{}, err
		}
		if err := p.readSemicolon(); err != nil {
			return Statement{}, err
		}
		return Statement{CreateTable: &CreateTable{Table: tableName, Columns: cols}}, nil

	default:
		return Statement{}, fault.New(fault.UnexpectedToken, "unexpected keyword after CREATE").WithContext("keyword", kw.String())
	}
}

func (p *Parser) parseColumnDefList() ([]coltype.Column, error) {
	var cols []coltype.Column

	name, err := p.readColumnName()
	if err != nil {
		return nil, err
	}
	typ, err := p.readType()
	if err != nil {
		return nil, err
	}
	cols = append(cols, coltype.Column{Name: name, Type: typ})

	for {
		t := p.peek()
		if t == nil || t.Type != token.TComma {
			break
		}
		p.read()
		if len(cols) >= ColumnMax {
			return nil, fault.New(fault.LimitReached, "too many columns")
		}
		name, err := p.readColumnName()
		if err != nil {
			return nil, err
		}
		typ, err := p.readType()
		if err != nil {
			return nil, err
		}
		cols = append(cols, coltype.Column{Name: name, Type: typ})
	}
	return cols, nil
}

func (p *Parser) parseDrop() (Statement, error) {
	p.read() // DROP
	kw, err := p.readKeyword()
	if err != nil {
		return Statement{}, err
	}
	switch kw {
	case token.DATABASE:
		name, err := p.readDatabaseName()
		if err != nil {
			return Statement{}, err
		}
		if err := p.readSemicolon(); err != nil {
			return Statement{}, err
		}
		return Statement{DropDatabase: &DropDatabase{Name: name}}, nil
	case token.TABLE:
		tableName, err := p.readTableName()
		if err != nil {
			return Statement{}, err
		}
		if err := p.readSemicolon(); err != nil {
			return Statement{}, err
		}
		return Statement{DropTable: &DropTable{Table: tableName}}, nil
	default:
		return Statement{}, fault.New(fault.UnexpectedToken, "unexpected keyword after DROP").WithContext("keyword", kw.String())
	}
}

func (p *Parser) parseUse() (Statement, error) {
	p.read() // USE
	name, err := p.readDatabaseName()
	if err != nil {
		return Statement{}, err
	}
	if err := p.readSemicolon(); err != nil {
		return Statement{}, err
	}
	return Statement{UseDatabase: &UseDatabase{Name: name}}, nil
}

func (p *Parser) parseAlter() (Statement, error) {
	p.read() // ALTER
	if err := p.expectKeyword(token.TABLE); err != nil {
		return Statement{}, err
	}
	tableName, err := p.readTableName()
	if err != nil {
		return Statement{}, err
	}
	if err := p.expectKeyword(token.ADD); err != nil {
		return Statement{}, err
	}
	colName, err := p.readColumnName()
	if err != nil {
		return Statement{}, err
	}
	typ, err := p.readType()
	if err != nil {
		return Statement{}, err
	}
	if err := p.readSemicolon(); err != nil {
		return Statement{}, err
	}
	return Statement{AlterAddColumn: &AlterAddColumn{
		Table:  tableName,
		Column: coltype.Column{Name: colName, Type: typ},
	}}, nil
}

func (p *Parser) parseInsert() (Statement, error) {
	p.read() // INSERT
	if err := p.expectKeyword(token.INTO); err != nil {
		return Statement{}, err
	}
	tableName, err := p.readTableName()
	if err != nil {
		return Statement{}, err
	}
	if err := p.expectKeyword(token.VALUES); err != nil {
		return Statement{}, err
	}
	if err := p.readLeftParen(); err != nil {
		return Statement{}, err
	}

	first, err := p.readValue()
	if err != nil {
		return Statement{}, err
	}
	values := []value.Value{first}

	for {
		t := p.peek()
		if t == nil || t.Type != token.TComma {
			break
		}
		p.read()
		if len(values) >= ColumnMax {
			return Statement{}, fault.New(fault.LimitReached, "too many values")
		}
		v, err := p.readValue()
		if err != nil {
			return Statement{}, err
		}
		values = append(values, v)
	}

	if err := p.readRightParen(); err != nil {
		return Statement{}, err
	}
	if err := p.readSemicolon(); err != nil {
		return Statement{}, err
	}
	return Statement{Insert: &Insert{Table: tableName, Values: values}}, nil
}

func (p *Parser) parseUpdate() (Statement, error) {
	p.read() // UPDATE
	tableName, err := p.readTableName()
	if err != nil {
		return Statement{}, err
	}
	if err := p.expectKeyword(token.SET); err != nil {
		return Statement{}, err
	}
	colName, err := p.readColumnName()
	if err != nil {
		return Statement{}, err
	}
	op, err := p.readOperator()
	if err != nil {
		return Statement{}, err
	}
	if op != token.Equals {
		return Statement{}, fault.New(fault.UnexpectedToken, "expected '=' in SET clause")
	}
	val, err := p.readValue()
	if err != nil {
		return Statement{}, err
	}

	hasWhere := false
	var where WhereClause
	if p.peekIsKeyword(token.WHERE) {
		where, err = p.readWhereClause()
		if err != nil {
			return Statement{}, err
		}
		hasWhere = true
	}

	if err := p.readSemicolon(); err != nil {
		return Statement{}, err
	}
	return Statement{Update: &Update{
		Table: tableName, Column: colName, Value: val,
		HasWhere: hasWhere, Where: where,
	}}, nil
}

func (p *Parser) parseDelete() (Statement, error) {
	p.read() // DELETE
	if err := p.expectKeyword(token.FROM); err != nil {
		return Statement{}, err
	}
	tableName, err := p.readTableName()
	if err != nil {
		return Statement{}, err
	}

	hasWhere := false
	var where WhereClause
	if p.peekIsKeyword(token.WHERE) {
		where, err = p.readWhereClause()
		if err != nil {
			return Statement{}, err
		}
		hasWhere = true
	}

	if err := p.readSemicolon(); err != nil {
		return Statement{}, err
	}
	return Statement{Delete: &Delete{Table: tableName, HasWhere: hasWhere, Where: where}}, nil
}

func (p *Parser) parseBegin() (Statement, error) {
	p.read() // BEGIN
	if err := p.expectKeyword(token.TRANSACTION); err != nil {
		return Statement{}, err
	}
	if err := p.readSemicolon(); err != nil {
		return Statement{}, err
	}
	return Statement{BeginTransaction: &BeginTransaction{}}, nil
}

func (p *Parser) parseCommit() (Statement, error) {
	p.read() // COMMIT
	if err := p.readSemicolon(); err != nil {
		return Statement{}, err
	}
	return Statement{CommitTransaction: &CommitTransaction{}}, nil
}

// parseSelect implements all three join shapes basic-sql's grammar
// allows: no join, "t1 a1, t2 a2 WHERE a1.c = a2.c" (implicit inner),
// "t1 a1 INNER JOIN t2 a2 ON a1.c = a2.c", and the LEFT OUTER JOIN
// variant. A WHERE clause is only legal when there is no join.
func (p *Parser) parseSelect() (Statement, error) {
	p.read() // SELECT

	var columns []string
	t := p.peek()
	if t == nil {
		return Statement{}, unexpectedEnd()
	}
	if t.Type == token.TAsterisk {
		p.read()
	} else if t.Type == token.TIdentifier {
		col, err := p.readColumnName()
		if err != nil {
			return Statement{}, err
		}
		columns = append(columns, col)
		for {
			nt := p.peek()
			if nt == nil || nt.Type != token.TComma {
				break
			}
			p.read()
			col, err := p.readColumnName()
			if err != nil {
				return Statement{}, err
			}
			columns = append(columns, col)
		}
	}

	if err := p.expectKeyword(token.FROM); err != nil {
		return Statement{}, err
	}

	tableName, err := p.readTableName()
	if err != nil {
		return Statement{}, err
	}

	alias := ""
	if nt := p.peek(); nt != nil && nt.Type == token.TIdentifier {
		alias, err = p.readTableName()
		if err != nil {
			return Statement{}, err
		}
	}

	join := NoJoin
	joinedTable := ""
	joinedAlias := ""

	if nt := p.peek(); nt != nil && nt.Type == token.TComma {
		p.read()
		joinedTable, err = p.readTableName()
		if err != nil {
			return Statement{}, err
		}
		joinedAlias, err = p.readTableName()
		if err != nil {
			return Statement{}, err
		}
		join = InnerJoin
	} else if p.peekIsKeyword(token.INNER) {
		p.read()
		if err := p.expectKeyword(token.JOIN); err != nil {
			return Statement{}, err
		}
		joinedTable, err = p.readTableName()
		if err != nil {
			return Statement{}, err
		}
		joinedAlias, err = p.readTableName()
		if err != nil {
			return Statement{}, err
		}
		if err := p.expectKeyword(token.ON); err != nil {
			return Statement{}, err
		}
		join = InnerJoin
	} else if p.peekIsKeyword(token.LEFT) {
		p.read()
		if err := p.expectKeyword(token.OUTER); err != nil {
			return Statement{}, err
		}
		if err := p.expectKeyword(token.JOIN); err != nil {
			return Statement{}, err
		}
		joinedTable, err = p.readTableName()
		if err != nil {
			return Statement{}, err
		}
		joinedAlias, err = p.readTableName()
		if err != nil {
			return Statement{}, err
		}
		if err := p.expectKeyword(token.ON); err != nil {
			return Statement{}, err
		}
		join = LeftOuterJoin
	}

	hasWhere := false
	var where WhereClause
	primaryJoinCol := ""
	secondaryJoinCol := ""

	if join != NoJoin {
		if p.peekIsKeyword(token.WHERE) {
			p.read()
		}

		firstTable, err := p.readTableName()
		if err != nil {
			return Statement{}, err
		}
		if err := p.expectPeriod(); err != nil {
			return Statement{}, err
		}
		firstCol, err := p.readColumnName()
		if err != nil {
			return Statement{}, err
		}

		switch firstTable {
		case alias:
			primaryJoinCol = firstCol
		case joinedAlias:
			return Statement{}, fault.New(fault.UnexpectedToken, "join predicate must reference the primary table first")
		default:
			return Statement{}, fault.New(fault.UnexpectedToken, "unknown table alias in join predicate").WithContext("alias", firstTable)
		}

		op, err := p.readOperator()
		if err != nil {
			return Statement{}, err
		}
		if op != token.Equals {
			return Statement{}, fault.New(fault.UnexpectedToken, "join predicate must use '='")
		}

		secondTable, err := p.readTableName()
		if err != nil {
			return Statement{}, err
		}
		if err := p.expectPeriod(); err != nil {
			return Statement{}, err
		}
		secondCol, err := p.readColumnName()
		if err != nil {
			return Statement{}, err
		}

		switch secondTable {
		case alias:
			primaryJoinCol = secondCol
		case joinedAlias:
			secondaryJoinCol = secondCol
		default:
			return Statement{}, fault.New(fault.UnexpectedToken, "unknown table alias in join predicate").WithContext("alias", secondTable)
		}
	} else if p.peekIsKeyword(token.WHERE) {
		where, err = p.readWhereClause()
		if err != nil {
			return Statement{}, err
		}
		hasWhere = true
	}

	if err := p.readSemicolon(); err != nil {
		return Statement{}, err
	}

	return Statement{Select: &Select{
		Table:    tableName,
		Alias:    alias,
		Columns:  columns,
		HasWhere: hasWhere,
		Where:    where,

		Join:                join,
		JoinedTable:         joinedTable,
		JoinedAlias:         joinedAlias,
		PrimaryJoinColumn:   primaryJoinCol,
		SecondaryJoinColumn: secondaryJoinCol,
	}}, nil
}

func (p *Parser) expectPeriod() error {
	t := p.read()
	if t == nil {
		return unexpectedEnd()
	}
	if t.Type != token.TPeriod {
		return unexpectedToken(*t)
	}
	return nil
}
