package validators

import "go.mongodb.org/mongo-driver/bson"

// VIPCustomerValidator keys customers by lowercase email in _id.
var VIPCustomerValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"_id", "created_at"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":            bson.M{"bsonType": "string", "minLength": 3},
			"vip_level":      bson.M{"bsonType": "string", "enum": []string{"standard", "gold", "premium"}},
			"total_bookings": bson.M{"bsonType": []string{"int", "long"}, "minimum": 0},
			"created_at":     bson.M{"bsonType": "date"},
		},
	},
}
