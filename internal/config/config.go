package config

type Config struct {
	Environment Environment
	Log         Log

	Backend  Backend  `envPrefix:"BACKEND_"`
	Razorpay Razorpay `envPrefix:"RAZORPAY_"`
	Session  Session  `envPrefix:"SESSION_"`
	Checkout Checkout `envPrefix:"CHECKOUT_"`
}

type Backend struct {
	BaseURL string `env:"BASE_URL" envDefault:"https://asmlmbackend-production.up.railway.app"`
}

type Razorpay struct {
	KeyID       string `env:"KEY_ID"`
	CompanyName string `env:"COMPANY_NAME" envDefault:"CQ Wealth"`
	ThemeColor  string `env:"THEME_COLOR" envDefault:"#D4AF37"`
}

type Session struct {
	// sqlite file holding the signed-in member's session record
	DBPath string `env:"DB_PATH" envDefault:"cqwealth-session.db"`
}

// Checkout is the localhost listener that hosts the Razorpay checkout page
// and receives its result callback.
type Checkout struct {
	Host string `env:"HOST" envDefault:"127.0.0.1"`
	Port int    `env:"PORT" envDefault:"8642"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}
