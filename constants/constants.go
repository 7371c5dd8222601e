package constants

// Cleaning

const (
	NullSentinel             = "NULL" // literal token used by the source systems for "no value".
	WeightClassLight         = "Light"
	WeightClassMidSized      = "Mid_Sized"
	WeightClassHeavy         = "Heavy"
	WeightClassTruckRequired = "Truck_Required"
	UuidLength               = 36
	TimeFormatDate           = "2006-01-02"
	TimeFormatDateTime       = "2006-01-02T15:04:05"
)

// Connections

const (
	EnvVarPrefix           = "SP"
	ConnectionTypePostgres = "postgres"
	ConnectionTypeS3       = "s3"
	ConnectionTypeApi      = "api"
	ConnectionTypeHttp     = "http"
	ConnectionSourceDb     = "source_db"
	ConnectionTargetDb     = "target_db"
	ConnectionCardsPdf     = "cards_pdf"
	ConnectionStoresApi    = "stores_api"
	ConnectionProductsS3   = "products_s3"
	ConnectionDateDetails  = "date_details"
	DefaultHttpTimeoutSec  = 30
)

// Source and warehouse tables

const (
	TableLegacyUsers     = "legacy_users"
	TableOrders          = "orders_table"
	TableDimUsers        = "dim_users"
	TableDimCardDetails  = "dim_card_details"
	TableDimStoreDetails = "dim_store_details"
	TableDimProducts     = "dim_products"
	TableDimDateTimes    = "dim_date_times"
)
