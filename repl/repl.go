package repl

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mstgnz/filesql/coltype"
	"github.com/mstgnz/filesql/fault"
	"github.com/mstgnz/filesql/interfaces"
	"github.com/mstgnz/filesql/logger"
	"github.com/mstgnz/filesql/monitoring"
	"github.com/mstgnz/filesql/parser"
	"github.com/mstgnz/filesql/value"
)

// REPL reads statements from in, dispatches them to an interfaces.Engine,
// and writes human-readable confirmation or error lines to out, in the
// style of basic-sql's interactive session.
type REPL struct {
	in      io.Reader
	out     io.Writer
	manager interfaces.Engine
	metrics *monitoring.MetricsCollector
	alerts  *monitoring.AlertManager
	log     *logger.Logger
}

func appliedAtNow() time.Time { return time.Now() }

// New returns a REPL reading from in and writing to out.
func New(in io.Reader, out io.Writer, manager interfaces.Engine, metrics *monitoring.MetricsCollector, alerts *monitoring.AlertManager, log *logger.Logger) *REPL {
	return &REPL{
		in:      in,
		out:     out,
		manager: manager,
		metrics: metrics,
		alerts:  alerts,
		log:     log,
	}
}

// Run reads lines until ".EXIT" or EOF, buffering them into statements
// terminated by an unquoted ";" and dispatching each as it completes.
func (r *REPL) Run() error {
	scanner := bufio.NewScanner(r.in)
	var pending strings.Builder

	for scanner.Scan() {
		line := scanner.Text()
		if IsExitCommand(line) {
			fmt.Fprintln(r.out, "All done.")
			return nil
		}
		if IsCommentLine(line) {
			continue
		}

		pending.WriteString(line)
		pending.WriteByte('\n')

		statements, remainder := ExtractStatements(pending.String())
		pending.Reset()
		pending.WriteString(remainder)

		for _, stmt := range statements {
			if trimmed := strings.TrimSpace(stmt); trimmed != "" {
				r.dispatch(trimmed)
			}
		}
	}

	return scanner.Err()
}

func (r *REPL) dispatch(text string) {
	r.log.StatementDispatched(text)

	p, err := parser.New(text)
	if err != nil {
		r.reportError("parse", err)
		return
	}
	statements, err := p.ParseAll()
	if err != nil {
		r.reportError("parse", err)
		return
	}

	for _, stmt := range statements {
		r.execute(stmt)
	}
}

func (r *REPL) execute(stmt parser.Statement) {
	switch {
	case stmt.CreateDatabase != nil:
		s := stmt.CreateDatabase
		r.metrics.IncrementStatement("CreateDatabase")
		if err := r.manager.CreateDatabase(s.Name); err != nil {
			r.reportNamed("create database", s.Name, err)
			return
		}
		fmt.Fprintf(r.out, "Database %s created.\n", s.Name)

	case stmt.DropDatabase != nil:
		s := stmt.DropDatabase
		r.metrics.IncrementStatement("DropDatabase")
		if err := r.manager.DropDatabase(s.Name); err != nil {
			r.reportNamed("delete database", s.Name, err)
			return
		}
		fmt.Fprintf(r.out, "Database %s deleted.\n", s.Name)

	case stmt.UseDatabase != nil:
		s := stmt.UseDatabase
		r.metrics.IncrementStatement("UseDatabase")
		if err := r.manager.UseDatabase(s.Name); err != nil {
			r.reportNamed("use database", s.Name, err)
			return
		}
		fmt.Fprintf(r.out, "Using database %s.\n", s.Name)

	case stmt.CreateTable != nil:
		s := stmt.CreateTable
		r.metrics.IncrementStatement("CreateTable")
		if err := r.manager.CreateTable(s.Table, s.Columns); err != nil {
			r.reportNamed("create table", s.Table, err)
			return
		}
		fmt.Fprintf(r.out, "Table %s created.\n", s.Table)

	case stmt.DropTable != nil:
		s := stmt.DropTable
		r.metrics.IncrementStatement("DropTable")
		if err := r.manager.DropTable(s.Table); err != nil {
			r.reportNamed("delete table", s.Table, err)
			return
		}
		fmt.Fprintf(r.out, "Table %s deleted.\n", s.Table)

	case stmt.AlterAddColumn != nil:
		s := stmt.AlterAddColumn
		r.metrics.IncrementStatement("AlterAddColumn")
		if err := r.manager.Alter(s, appliedAtNow()); err != nil {
			r.reportNamed("alter table", s.Table, err)
			return
		}
		fmt.Fprintf(r.out, "Table %s modified.\n", s.Table)

	case stmt.Insert != nil:
		s := stmt.Insert
		r.metrics.IncrementStatement("Insert")
		if err := r.manager.Insert(s); err != nil {
			r.reportNamed("insert", s.Table, err)
			return
		}
		fmt.Fprintln(r.out, "1 new record inserted.")

	case stmt.Update != nil:
		s := stmt.Update
		r.metrics.IncrementStatement("Update")
		n, err := r.manager.Update(s)
		if err != nil {
			r.metrics.IncrementError(fault.KindOf(err).String())
			if fault.Is(err, fault.FileAlreadyOpened) {
				r.metrics.IncrementLockContention()
				r.log.LockContended(s.Table)
			}
			fmt.Fprintf(r.out, "!Failed to update. (%s)\n", fault.KindOf(err))
			return
		}
		fmt.Fprintf(r.out, "%d %s modified.\n", n, plural(n, "record"))

	case stmt.Delete != nil:
		s := stmt.Delete
		r.metrics.IncrementStatement("Delete")
		n, err := r.manager.Delete(s)
		if err != nil {
			r.reportNamed("delete", s.Table, err)
			return
		}
		fmt.Fprintf(r.out, "%d %s deleted.\n", n, plural(n, "record"))

	case stmt.Select != nil:
		s := stmt.Select
		r.metrics.IncrementStatement("Select")
		result, err := r.manager.Select(s)
		if err != nil {
			r.reportNamed("select", s.Table, err)
			return
		}
		if s.Join != parser.NoJoin {
			r.metrics.RecordJoinOutput(len(result.Rows))
		}
		r.printResult(result.Columns, result.Rows)

	case stmt.BeginTransaction != nil:
		r.metrics.IncrementStatement("BeginTransaction")
		if err := r.manager.BeginTransaction(); err != nil {
			r.reportError("begin transaction", err)
			return
		}
		fmt.Fprintln(r.out, "Transaction starts.")

	case stmt.CommitTransaction != nil:
		r.metrics.IncrementStatement("CommitTransaction")
		err := r.manager.CommitTransaction()
		if err != nil {
			r.log.TransactionAborted()
			if alertErr := r.alerts.CheckThresholds(); alertErr != nil {
				r.log.AlertDispatchFailed(alertErr)
			}
			fmt.Fprintln(r.out, "Transaction abort.")
			return
		}
		fmt.Fprintln(r.out, "Transaction committed.")
	}
}

func plural(n int, noun string) string {
	if n == 1 {
		return noun
	}
	return noun + "s"
}

func (r *REPL) reportNamed(action, name string, err error) {
	kind := fault.KindOf(err)
	r.metrics.IncrementError(kind.String())
	r.log.StatementFailed(action, name, kind)
	fmt.Fprintf(r.out, "!Failed to %s %s. (%s)\n", action, name, kind)
}

func (r *REPL) reportError(action string, err error) {
	kind := fault.KindOf(err)
	r.metrics.IncrementError(kind.String())
	r.log.StatementFailed(action, "", kind)
	fmt.Fprintf(r.out, "!Failed to %s. (%s)\n", action, kind)
}

// printResult writes a column header line, each column suffixed with
// its type, followed by one pipe-separated line per row.
func (r *REPL) printResult(columns []coltype.Column, rows [][]value.Value) {
	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = fmt.Sprintf("%s %s", c.Name, c.Type)
	}
	fmt.Fprintln(r.out, strings.Join(header, " | "))

	for _, row := range rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = v.String()
		}
		fmt.Fprintln(r.out, strings.Join(cells, " | "))
	}
}
