package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iir20/amar-dokan-pos-system/internal/checkout"
	"github.com/iir20/amar-dokan-pos-system/internal/model"
	"github.com/iir20/amar-dokan-pos-system/internal/reconcile"
	"github.com/iir20/amar-dokan-pos-system/internal/service"
)

// Each view is a named type over the result it renders, so JSON output is
// the result itself.

const textTimeLayout = "2006-01-02 15:04"

func money(d decimal.Decimal) string { return d.StringFixed(2) }

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func label(w io.Writer, name, value string) {
	fmt.Fprintf(w, "  %-16s%s\n", name+":", value)
}

type initView struct {
	Database string `json:"database"`
	Seeded   int    `json:"seeded"`
	Items    int    `json:"items"`
	Pending  int    `json:"pending"`
}

func (v initView) renderText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "Database %s ready: %d items (%d seeded), %d changes waiting to sync.\n",
		v.Database, v.Items, v.Seeded, v.Pending)
	return err
}

type itemsView []model.CatalogItem

func (v itemsView) renderText(w io.Writer) error {
	if len(v) == 0 {
		_, err := fmt.Fprintln(w, "No items.")
		return err
	}
	tw := table(w)
	fmt.Fprintln(tw, "ID\tNAME\tBANGLA\tCATEGORY\tPRICE\tCOST\tSTOCK")
	for _, it := range v {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s %s\n",
			it.ID, it.Name, it.NameBn, it.Category, money(it.Price), money(it.Cost), it.Stock, it.Unit)
	}
	return tw.Flush()
}

type itemView model.CatalogItem

func (v itemView) renderText(w io.Writer) error {
	return itemsView{model.CatalogItem(v)}.renderText(w)
}

type saleView model.SaleRecord

func (v saleView) renderText(w io.Writer) error {
	fmt.Fprintf(w, "Sale %s  %s  %s\n", v.ID, v.SoldAt.UTC().Format(textTimeLayout), v.PaymentMethod)
	if v.CustomerName != "" || v.CustomerPhone != "" {
		fmt.Fprintf(w, "Customer: %s %s\n", v.CustomerName, v.CustomerPhone)
	}
	tw := table(w)
	for _, l := range v.Items {
		fmt.Fprintf(tw, "  %s\t%s %s x %s\t%s\n", l.Name, l.Quantity, l.Unit, money(l.Price), money(l.Amount()))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	label(w, "Total", money(v.Total))
	label(w, "Paid", money(v.Paid))
	label(w, "Change", money(model.SaleRecord(v).Change()))
	label(w, "Due", money(v.Due))
	return nil
}

type receiptView checkout.Receipt

func (v receiptView) renderText(w io.Writer) error {
	if err := saleView(v.Sale).renderText(w); err != nil {
		return err
	}
	var delivered, queued int
	for _, o := range v.Outcomes {
		if o.Delivered {
			delivered++
		}
		if o.Queued {
			queued++
		}
	}
	label(w, "Sync", fmt.Sprintf("%d delivered, %d queued", delivered, queued))
	return nil
}

type salesView []model.SaleRecord

func (v salesView) renderText(w io.Writer) error {
	if len(v) == 0 {
		_, err := fmt.Fprintln(w, "No sales.")
		return err
	}
	tw := table(w)
	fmt.Fprintln(tw, "ID\tDATE\tCUSTOMER\tITEMS\tTOTAL\tDUE")
	for _, s := range v {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
			s.ID, s.SoldAt.UTC().Format(textTimeLayout), s.CustomerName, len(s.Items), money(s.Total), money(s.Due))
	}
	return tw.Flush()
}

type dueView service.DueSummary

func (v dueView) renderText(w io.Writer) error {
	if len(v.Sales) == 0 {
		_, err := fmt.Fprintln(w, "No outstanding dues.")
		return err
	}
	tw := table(w)
	fmt.Fprintln(tw, "ID\tDATE\tCUSTOMER\tPHONE\tDUE")
	for _, s := range v.Sales {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			s.ID, s.SoldAt.UTC().Format(textTimeLayout), s.CustomerName, s.CustomerPhone, money(s.Due))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Total due: %s\n", money(v.TotalDue))
	return err
}

type expensesView []model.ExpenseRecord

func (v expensesView) renderText(w io.Writer) error {
	if len(v) == 0 {
		_, err := fmt.Fprintln(w, "No expenses.")
		return err
	}
	tw := table(w)
	fmt.Fprintln(tw, "ID\tDATE\tCATEGORY\tDESCRIPTION\tAMOUNT")
	for _, e := range v {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			e.ID, e.SpentAt.UTC().Format(time.DateOnly), e.Category, e.Description, money(e.Amount))
	}
	return tw.Flush()
}

type expenseView model.ExpenseRecord

func (v expenseView) renderText(w io.Writer) error {
	return expensesView{model.ExpenseRecord(v)}.renderText(w)
}

type queueView []model.QueuedMutation

func (v queueView) renderText(w io.Writer) error {
	if len(v) == 0 {
		_, err := fmt.Fprintln(w, "Sync queue is empty.")
		return err
	}
	tw := table(w)
	fmt.Fprintln(tw, "SEQ\tQUEUED\tCOLLECTION\tOPERATION\tATTEMPTS\tLAST ERROR")
	for _, q := range v {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\n",
			q.Seq, q.EnqueuedAt.UTC().Format(textTimeLayout), q.Collection, q.Operation, q.Attempts, q.LastError)
	}
	return tw.Flush()
}

type syncView reconcile.Report

func (v syncView) renderText(w io.Writer) error {
	if v.Skipped {
		_, err := fmt.Fprintln(w, "Sync skipped: offline or no remote configured.")
		return err
	}
	_, err := fmt.Fprintf(w, "Synced %d of %d queued changes; %d still pending.\n", v.Delivered, v.Attempted, v.Failed)
	return err
}

type userView model.UserProfile

func (v userView) renderText(w io.Writer) error {
	fmt.Fprintf(w, "%s (%s)\n", v.Username, v.StoreName)
	if v.Address != "" {
		label(w, "Address", v.Address)
	}
	if v.Phone != "" {
		label(w, "Phone", v.Phone)
	}
	return nil
}

type summaryView service.Summary

func (v summaryView) renderText(w io.Writer) error {
	fmt.Fprintf(w, "Report %s to %s\n", v.From.UTC().Format(time.DateOnly), v.To.UTC().AddDate(0, 0, -1).Format(time.DateOnly))
	writeSummary(w, service.Summary(v))
	return nil
}

func writeSummary(w io.Writer, s service.Summary) {
	label(w, "Sales", fmt.Sprintf("%d (%s)", s.SaleCount, money(s.TotalSales)))
	label(w, "Gross profit", money(s.GrossProfit))
	label(w, "Expenses", money(s.TotalExpenses))
	label(w, "Net profit", money(s.NetProfit))
	label(w, "Due", money(s.TotalDue))
}

type dashboardView service.Dashboard

func (v dashboardView) renderText(w io.Writer) error {
	fmt.Fprintln(w, "Dashboard")
	writeSummary(w, v.Summary)
	label(w, "Low stock", fmt.Sprint(v.LowStockCount))

	if len(v.Trend) > 0 {
		fmt.Fprintf(w, "\nLast %d days with sales\n", service.TrendDays)
		for _, d := range v.Trend {
			fmt.Fprintf(w, "  %s  sales %s  profit %s\n", d.Date, money(d.Sales), money(d.Profit))
		}
	}
	if len(v.LowStock) > 0 {
		fmt.Fprintln(w, "\nLow stock items")
		for _, it := range v.LowStock {
			fmt.Fprintf(w, "  %s  %s %s\n", it.Name, it.Stock, it.Unit)
		}
	}
	return nil
}
