// cmd/client/cmd/init.go
package cmd

import (
	"gophregister/cmd/client/cmd/cart"
	"gophregister/cmd/client/cmd/device"
	"gophregister/cmd/client/cmd/expense"
	"gophregister/cmd/client/cmd/sale"
	"gophregister/cmd/client/cmd/shift"
	"gophregister/cmd/client/cmd/sync"
)

func init() {
	rootCmd.AddCommand(device.DeviceCmd)
	device.DeviceCmd.AddCommand(device.StatusCmd)
	device.DeviceCmd.AddCommand(device.SelectCmd)
	device.DeviceCmd.AddCommand(device.ProvisionCmd)
	device.DeviceCmd.AddCommand(device.SignOutCmd)
	device.DeviceCmd.AddCommand(device.NoticesCmd)

	rootCmd.AddCommand(shift.ShiftCmd)
	shift.ShiftCmd.AddCommand(shift.OpenCmd)
	shift.ShiftCmd.AddCommand(shift.CurrentCmd)
	shift.ShiftCmd.AddCommand(shift.CloseCmd)
	shift.ShiftCmd.AddCommand(shift.HistoryCmd)
	shift.ShiftCmd.AddCommand(shift.ChecklistCmd)

	rootCmd.AddCommand(cart.CartCmd)
	cart.CartCmd.AddCommand(cart.ListCmd)
	cart.CartCmd.AddCommand(cart.ShowCmd)
	cart.CartCmd.AddCommand(cart.OpenCmd)
	cart.CartCmd.AddCommand(cart.AddCmd)
	cart.CartCmd.AddCommand(cart.QuantityCmd)
	cart.CartCmd.AddCommand(cart.RemoveCmd)
	cart.CartCmd.AddCommand(cart.ClearCmd)
	cart.CartCmd.AddCommand(cart.TransferCmd)

	rootCmd.AddCommand(sale.CheckoutCmd)

	rootCmd.AddCommand(expense.ExpenseCmd)
	expense.ExpenseCmd.AddCommand(expense.AddCmd)
	expense.ExpenseCmd.AddCommand(expense.ListCmd)

	rootCmd.AddCommand(sync.SyncCmd)
}
