package migrations

import (
	"encoding/json"

	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		jsonData := `{
			"id": "tkcol5m8q2w7y4z",
			"name": "tickets",
			"type": "base",
			"system": false,
			"fields": [
				{
					"id": "rel_event",
					"name": "event",
					"type": "relation",
					"required": true,
					"presentable": false,
					"system": false,
					"collectionId": "evcol9a2k1x0r3t",
					"cascadeDelete": false,
					"minSelect": 0,
					"maxSelect": 1
				},
				{
					"id": "text_ticket_type",
					"name": "ticket_type",
					"type": "text",
					"required": true,
					"presentable": false,
					"system": false
				},
				{
					"id": "text_code",
					"name": "code",
					"type": "text",
					"required": true,
					"presentable": true,
					"system": false
				},
				{
					"id": "text_owner",
					"name": "owner",
					"type": "text",
					"required": false,
					"presentable": false,
					"system": false
				},
				{
					"id": "number_price",
					"name": "price",
					"type": "number",
					"required": false,
					"presentable": false,
					"system": false,
					"min": 0
				},
				{
					"id": "select_status",
					"name": "status",
					"type": "select",
					"required": true,
					"presentable": false,
					"system": false,
					"maxSelect": 1,
					"values": [
						"valid",
						"used",
						"void"
					]
				},
				{
					"id": "date_used_at",
					"name": "used_at",
					"type": "date",
					"required": false,
					"presentable": false,
					"system": false
				},
				{
					"id": "text_used_by",
					"name": "used_by",
					"type": "text",
					"required": false,
					"presentable": false,
					"system": false
				},
				{
					"id": "text_used_device",
					"name": "used_device",
					"type": "text",
					"required": false,
					"presentable": false,
					"system": false
				}
			],
			"indexes": [
				"CREATE UNIQUE INDEX idx_tickets_event_code ON tickets (event, code)"
			],
			"listRule": null,
			"viewRule": null,
			"createRule": null,
			"updateRule": null,
			"deleteRule": null
		}`

		collection := &core.Collection{}
		if err := json.Unmarshal([]byte(jsonData), &collection); err != nil {
			return err
		}

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("tkcol5m8q2w7y4z")
		if err != nil {
			return err
		}

		return app.Delete(collection)
	})
}
