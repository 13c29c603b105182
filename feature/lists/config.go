package lists

// Config holds list provisioning and reconciliation settings.
type Config struct {
	// CoreListNames is the canonical set provisioned for every user, in order.
	CoreListNames []string `mapstructure:"core_list_names" default:"To Read,Reading,Completed,DNF"`
	// TransactionalReconcile wraps a bulk membership update in one database transaction.
	TransactionalReconcile bool `mapstructure:"transactional_reconcile" default:"false"`
	// DistinguishAccessErrors reports missing, foreign and read-only lists as errors
	// instead of empty results.
	DistinguishAccessErrors bool `mapstructure:"distinguish_access_errors" default:"false"`
}

// DefaultCoreListNames is used when no names are configured.
var DefaultCoreListNames = []string{"To Read", "Reading", "Completed", "DNF"}

func (c Config) coreListNames() []string {
	if len(c.CoreListNames) == 0 {
		return DefaultCoreListNames
	}
	return c.CoreListNames
}
