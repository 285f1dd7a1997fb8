// Package mocks provides mock implementations for testing the paystream client.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for our port interfaces.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	api := mocks.NewMockPayrollAPI(ctrl)
//	api.EXPECT().ListExpenses(gomock.Any()).Return(expenses, nil)
package mocks

// Generate mock for PayrollAPI interface from internal/ports package.
// This creates MockPayrollAPI with methods for all PayrollAPI interface methods:
// Me, Stats, ListUsers, ListExpenses, CreateExpense, SetExpenseStatus, ListSalarySlips, CreateSalarySlip, DownloadSalarySlip
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=payroll_api_mock.go github.com/target/paystream-client/internal/ports PayrollAPI

// Generate mock for ArtifactWriter interface from internal/ports package.
// This creates MockArtifactWriter with methods for all ArtifactWriter interface methods:
// Write
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=artifact_writer_mock.go github.com/target/paystream-client/internal/ports ArtifactWriter
