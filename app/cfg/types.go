package cfg

type Cfg struct {
	// Storage configuration
	RedisAddr string
	KVPrefix  string

	// Application configuration
	Port            string
	BaseUrl         string
	APIAccessKey    string
	SeedFile        string
	WorkerCount     int
	RefreshInterval int
	FetchTimeout    int
	MaxConsecutive  int

	// Integrations
	OpenAIAPIKey string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
