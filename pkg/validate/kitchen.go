package validate

type TimingRuleInput struct {
	Category    string `json:"category" yaml:"category"`
	TargetMin   int    `json:"target_min" yaml:"target_min"`
	WarningMin  *int   `json:"warning_min,omitempty" yaml:"warning_min,omitempty"`
	CriticalMin *int   `json:"critical_min,omitempty" yaml:"critical_min,omitempty"`
}

func (in TimingRuleInput) Validate() Errors {
	var errs Errors
	errs.required("category", in.Category)
	if in.TargetMin < 0 {
		errs.add("target_min", "target_min cannot be negative")
	}
	if in.WarningMin != nil && *in.WarningMin < 0 {
		errs.add("warning_min", "warning_min cannot be negative")
	}
	if in.CriticalMin != nil && *in.CriticalMin < 0 {
		errs.add("critical_min", "critical_min cannot be negative")
	}
	if in.WarningMin != nil && in.CriticalMin != nil && *in.CriticalMin < *in.WarningMin {
		errs.add("critical_min", "critical_min must be greater than or equal to warning_min")
	}
	return errs
}
