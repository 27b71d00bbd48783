// Package workbook reads and writes the Excel workbooks the rental business
// keeps: a control panel of pricing rules and a ledger workbook with one
// sheet per customer.
package workbook
