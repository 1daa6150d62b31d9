package cmd

type Config struct {
	HTTPPort              string
	DBHost                string
	DBPort                string
	DBUser                string
	DBPassword            string
	DBName                string
	DBSslMode             string
	DispatchSecret        string
	DispatchRadiusKm      float64
	PayMongoSecretKey     string
	PayMongoWebhookSecret string
	PayMongoMode          string
}
