// Package common holds enumerations shared by several hospital resources.
package common

import "github.com/hospitalhq/hms/internal/platform/record"

// PaymentModes are the accepted payment_mode values on bills and visits.
var PaymentModes = record.Choices{"Cash", "Transfer to Bank A/C", "UPI", "Card", "Insurance"}

const DefaultPaymentMode = "Cash"

// YesNo backs flags such as live_consult and casualty.
var YesNo = record.Choices{"No", "Yes"}

// Kinds referenced across packages.
const (
	PatientKind  = "patient"
	EmployeeKind = "employees"
)
