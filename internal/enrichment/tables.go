package enrichment

import "github.com/Veraticus/smart-categorizer/internal/model"

// logoCDN maps a merchant-name fragment to a public logo.
var logoCDN = []struct {
	key string
	url string
}{
	{"zomato", "https://b.zmtcdn.com/web_assets/b40b97e677bc7b2ca77c58c61db266fe1603954218.png"},
	{"swiggy", "https://logos-world.net/wp-content/uploads/2022/07/Swiggy-Logo.png"},
	{"amazon", "https://upload.wikimedia.org/wikipedia/commons/a/a9/Amazon_logo.svg"},
	{"flipkart", "https://logos-world.net/wp-content/uploads/2020/11/Flipkart-Logo.png"},
	{"netflix", "https://upload.wikimedia.org/wikipedia/commons/7/7a/Logonetflix.png"},
	{"spotify", "https://upload.wikimedia.org/wikipedia/commons/2/26/Spotify_logo_with_text.svg"},
	{"uber", "https://upload.wikimedia.org/wikipedia/commons/c/cc/Uber_logo_2018.png"},
	{"ola", "https://logos-world.net/wp-content/uploads/2021/08/Ola-Logo.png"},
	{"paytm", "https://logos-world.net/wp-content/uploads/2020/09/Paytm-Logo.png"},
	{"phonepe", "https://download.logo.wine/logo/PhonePe/PhonePe-Logo.wine.png"},
	{"gpay", "https://upload.wikimedia.org/wikipedia/commons/f/f2/Google_Pay_Logo.svg"},
	{"jio", "https://logos-world.net/wp-content/uploads/2021/03/Jio-Logo.png"},
	{"airtel", "https://upload.wikimedia.org/wikipedia/commons/9/95/Bharti_Airtel_Logo.svg"},
	{"hdfc", "https://upload.wikimedia.org/wikipedia/commons/2/28/HDFC_Bank_Logo.svg"},
	{"sbi", "https://upload.wikimedia.org/wikipedia/commons/c/cc/SBI-logo.svg"},
	{"icici", "https://upload.wikimedia.org/wikipedia/commons/b/bb/Icici-bank-logo.svg"},
}

var businessTypeDisplay = map[string]string{
	"food_delivery":      "Food Delivery Platform",
	"quick_commerce":     "Quick Commerce / 10-min Delivery",
	"ecommerce":          "E-Commerce Marketplace",
	"ride_hailing":       "Ride-Hailing / Cab Service",
	"ott":                "OTT Streaming Platform",
	"music_streaming":    "Music Streaming Service",
	"telecom":            "Telecom / Mobile Operator",
	"bank":               "Bank / Financial Institution",
	"fintech":            "Fintech / Digital Finance",
	"stockbroker":        "Stock Broker / Investment Platform",
	"insurance":          "Insurance Provider",
	"pharmacy":           "Pharmacy / Medical Store",
	"online_pharmacy":    "Online Pharmacy",
	"healthtech":         "Health-Tech Platform",
	"edtech":             "Education Technology Platform",
	"qsr":                "Quick Service Restaurant (QSR)",
	"cafe":               "Cafe / Coffee Shop",
	"supermarket":        "Supermarket / Grocery Store",
	"electronics_retail": "Electronics Retail Store",
	"hospitality":        "Hotels & Accommodation",
	"travel_ota":         "Travel OTA (Online Travel Agency)",
	"airline":            "Airline",
	"fuel":               "Petrol Pump / Fuel Station",
	"power_utility":      "Electricity Distribution Company",
	"gas_utility":        "City Gas Distribution",
	"government":         "Government / Public Service",
	"tech":               "Technology / Software Company",
	"social_commerce":    "Social Commerce Platform",
	"fashion_ecommerce":  "Fashion E-Commerce",
	"beauty_ecommerce":   "Beauty & Cosmetics Platform",
	"fitness":            "Fitness & Wellness Platform",
	"home_services":      "Home Services Platform",
	"rail":               "Indian Railways / Train Booking",
	"public_transit":     "Public Transit / Metro",
	"grocery_ecommerce":  "Online Grocery Platform",
}

var chargeDescriptions = map[model.ChargeType]string{
	model.ChargeSubscription:      "Recurring fixed subscription charge",
	model.ChargeOneTime:           "One-time purchase",
	model.ChargeVariable:          "Variable amount per transaction",
	model.ChargeRecurringVariable: "Recurring but amount varies (e.g., utility bills)",
}

type pair struct {
	category    string
	subcategory string
}

var inferredBusinessTypes = map[pair]string{
	{"Food & Dining", "Restaurants"}:         "Food Delivery / Restaurant",
	{"Food & Dining", "Groceries"}:           "Grocery Store",
	{"Transportation", "Cab & Taxi"}:         "Ride-Hailing Service",
	{"Transportation", "Petrol & Fuel"}:      "Fuel Station",
	{"Entertainment", "OTT Subscriptions"}:   "OTT Streaming Platform",
	{"Utilities & Bills", "Mobile Recharge"}: "Telecom Operator",
	{"Healthcare", "Pharmacy"}:               "Pharmacy / Medical Store",
	{"Financial Services", "Loan EMI"}:       "NBFC / Bank",
}

// Subcategory fragments that imply a charge type, checked in order.
var chargeBuckets = []struct {
	charge    model.ChargeType
	fragments []string
}{
	{model.ChargeSubscription, []string{"subscription", "ott", "streaming", "membership"}},
	{model.ChargeRecurringVariable, []string{"bill", "electricity", "gas", "water"}},
	{model.ChargeSubscription, []string{"loan", "emi", "insurance premium"}},
}
