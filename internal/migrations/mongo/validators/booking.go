package validators

import "go.mongodb.org/mongo-driver/bson"

const datePattern = `^[0-9]{4}-[0-9]{2}-[0-9]{2}$`

var BookingRequestValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"parent_name",
			"email",
			"dog_name",
			"start_date",
			"end_date",
			"booking_type",
			"is_vip",
			"status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"parent_name": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 100,
			},

			"email": bson.M{
				"bsonType":  "string",
				"maxLength": 254,
			},

			"phone": bson.M{
				"bsonType": "string",
			},

			"dog_name": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 100,
			},

			"dog_age": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},

			"start_date": bson.M{
				"bsonType": "string",
				"pattern":  datePattern,
			},

			"end_date": bson.M{
				"bsonType": "string",
				"pattern":  datePattern,
			},

			"booking_type": bson.M{
				"bsonType": "string",
				"enum":     []string{"weeknight", "weekend"},
			},

			"is_vip": bson.M{
				"bsonType": "bool",
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"AUTO_APPROVED",
					"PENDING",
					"DENIED",
					"APPROVED",
					"REJECTED",
				},
			},

			"slack_message_ts": bson.M{
				"bsonType": "string",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
