package config

import "fmt"

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if err := c.Lending.validate(); err != nil {
		return fmt.Errorf("lending: %w", err)
	}
	return nil
}

func (l *LendingConfig) validate() error {
	if l.MaxLoansPerMember <= 0 {
		return fmt.Errorf("max_loans_per_member must be > 0 (got %d)", l.MaxLoansPerMember)
	}
	if l.LoanPeriodDays < 1 || l.LoanPeriodDays > l.MaxLoanPeriodDays {
		return fmt.Errorf("loan_period_days must be in [1, %d] (got %d)", l.MaxLoanPeriodDays, l.LoanPeriodDays)
	}
	if l.MaxLoanPeriodDays < 1 || l.MaxLoanPeriodDays > 30 {
		return fmt.Errorf("max_loan_period_days must be in [1, 30] (got %d)", l.MaxLoanPeriodDays)
	}
	if l.MaxExtensions < 0 {
		return fmt.Errorf("max_extensions must be >= 0 (got %d)", l.MaxExtensions)
	}
	if l.ExtensionDays < 1 || l.ExtensionDays > l.MaxExtensionDays {
		return fmt.Errorf("extension_days must be in [1, %d] (got %d)", l.MaxExtensionDays, l.ExtensionDays)
	}
	if l.MaxExtensionDays < 1 || l.MaxExtensionDays > 14 {
		return fmt.Errorf("max_extension_days must be in [1, 14] (got %d)", l.MaxExtensionDays)
	}
	if l.FinePerDayCents < 0 {
		return fmt.Errorf("fine_per_day_cents must be >= 0 (got %d)", l.FinePerDayCents)
	}
	if l.GracePeriodDays < 0 {
		return fmt.Errorf("grace_period_days must be >= 0 (got %d)", l.GracePeriodDays)
	}
	if l.MaxFineCents < l.FinePerDayCents {
		return fmt.Errorf("max_fine_cents must be >= fine_per_day_cents (got %d < %d)", l.MaxFineCents, l.FinePerDayCents)
	}
	if l.ScanConcurrency < 1 {
		return fmt.Errorf("scan_concurrency must be >= 1 (got %d)", l.ScanConcurrency)
	}
	return nil
}
