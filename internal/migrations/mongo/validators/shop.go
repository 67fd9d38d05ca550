package validators

import "go.mongodb.org/mongo-driver/bson"

var ShopValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"name",
			"city",
			"address",
			"schedule",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"city": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 50,
			},

			"address": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 200,
			},

			"phone": bson.M{
				"bsonType": "string",
			},

			"schedule": bson.M{
				"bsonType": "object",
				"required": []string{"weekday"},
				"properties": bson.M{
					"weekday": bson.M{
						"bsonType": "object",
						"required": []string{"start_time", "end_time", "slot_interval_min"},
						"properties": bson.M{
							"start_time": bson.M{
								"bsonType": "string",
								"pattern":  "^([01][0-9]|2[0-3]):[0-5][0-9]$",
							},
							"end_time": bson.M{
								"bsonType": "string",
								"pattern":  "^([01][0-9]|2[0-3]):[0-5][0-9]$",
							},
							"slot_interval_min": bson.M{
								"bsonType": "int",
								"minimum":  5,
								"maximum":  480,
							},
						},
					},
					"weekend": bson.M{
						"bsonType": "object",
						"properties": bson.M{
							"slots_count": bson.M{
								"bsonType": "int",
								"minimum":  0,
								"maximum":  200,
							},
						},
					},
				},
			},

			"services": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"id", "name", "duration_min"},
					"properties": bson.M{
						"id": bson.M{
							"bsonType": "string",
						},
						"name": bson.M{
							"bsonType":  "string",
							"minLength": 2,
							"maxLength": 100,
						},
						"duration_min": bson.M{
							"bsonType": "int",
							"minimum":  5,
							"maximum":  480,
						},
						"price_cents": bson.M{
							"bsonType": "long",
							"minimum":  0,
						},
					},
				},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
