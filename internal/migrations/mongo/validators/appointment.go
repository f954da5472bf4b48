package validators

import "go.mongodb.org/mongo-driver/bson"

var AppointmentValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"patient_id",
			"patient_name",
			"reason_for_visit",
			"appointment_date",
			"time",
			"status",
			"created_at",
			"date_key",
			"time_minutes",
			"active",
			"slot_index",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"patient_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},

			"patient_name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 50,
			},

			"reason_for_visit": bson.M{
				"bsonType":  "string",
				"minLength": 3,
				"maxLength": 500,
			},

			"appointment_date": bson.M{
				"bsonType": "date",
			},

			"date_key": bson.M{
				"bsonType": "string",
				"pattern":  `^\d{4}-\d{2}-\d{2}$`,
			},

			"time": bson.M{
				"bsonType": "string",
				"pattern":  `^([01]\d|2[0-3]):[0-5]\d$`,
			},

			"time_minutes": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
				"maximum":  1439,
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"scheduled",
					"confirmed",
					"cancelled",
					"completed",
				},
			},

			"active": bson.M{
				"bsonType": "bool",
			},

			"slot_index": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},

			"contact_number": bson.M{
				"bsonType":  "string",
				"maxLength": 20,
			},

			"doctor_name": bson.M{
				"bsonType":  "string",
				"maxLength": 255,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"updated_at": bson.M{
				"bsonType": []string{"date", "null"},
			},
		},
	},
}
