package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"baktgo/internal/service"
)

// Write renders the end-of-run summary tables. Downstream only: nothing
// here feeds back into the simulation.
func Write(w io.Writer, orders service.OrderStats, trades service.TradeStats) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "[Orders]")
	fmt.Fprintf(tw, "orders\t%d\t(buy %d / sell %d)\n", orders.NumOfOrders, orders.NumOfBuyOrders, orders.NumOfSellOrders)
	fmt.Fprintf(tw, "types\tlimit %d\tmarket %d\n", orders.NumOfLimitOrders, orders.NumOfMarketOrders)
	fmt.Fprintf(tw, "status\tcompleted %d\tcanceled %d\tactive %d\n",
		orders.NumOfCompletedOrders, orders.NumOfCanceledOrders, orders.NumOfActiveOrders)
	fmt.Fprintf(tw, "executions\t%d\n", orders.NumOfExecutions)
	fmt.Fprintf(tw, "order size\t%s\t(avg %s)\n", orders.SizeOfOrders, orders.AvgOrderSize)
	fmt.Fprintf(tw, "executed size\t%s\t(exec rate %s)\n", orders.SizeOfExecutions, orders.ExecRate)
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "[Trades]")
	fmt.Fprintf(tw, "trades\t%d\t(win %d / lose %d / even %d)\n",
		trades.NumOfTrades, trades.NumOfWin, trades.NumOfLose, trades.NumOfEven)
	fmt.Fprintf(tw, "win rate\t%s\n", trades.WinRate.Round(4))
	fmt.Fprintf(tw, "profit\t%s\n", trades.Profit)
	fmt.Fprintf(tw, "loss\t%s\n", trades.Loss)
	fmt.Fprintf(tw, "total pnl\t%s\n", trades.TotalPnl)
	fmt.Fprintf(tw, "expected value\t%s\n", trades.ExpectedValue)
	fmt.Fprintf(tw, "profit factor\t%s\n", trades.ProfitFactor)

	return tw.Flush()
}
