package protocol

// inboundSchema describes every packet a client may send.
const inboundSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["type", "channel", "body"],
  "properties": {
    "type": {"enum": ["message", "action"]},
    "channel": {"type": "string"},
    "body": {"type": "object"}
  },
  "oneOf": [
    {
      "properties": {
        "type": {"const": "message"},
        "channel": {"const": "public"},
        "body": {
          "required": ["text"],
          "properties": {"text": {"type": "string", "maxLength": 512}}
        }
      }
    },
    {
      "properties": {
        "type": {"const": "message"},
        "channel": {"const": "private"},
        "body": {
          "required": ["recipient", "text"],
          "properties": {
            "recipient": {"type": "string", "minLength": 1},
            "text": {"type": "string", "maxLength": 512}
          }
        }
      }
    },
    {
      "properties": {
        "type": {"const": "message"},
        "channel": {"const": "login"},
        "body": {
          "required": ["name"],
          "properties": {"name": {"type": "string"}}
        }
      }
    },
    {
      "properties": {
        "type": {"const": "action"},
        "channel": {"const": "movement"},
        "body": {
          "required": ["direction"],
          "properties": {"direction": {"enum": ["UP", "DOWN", "LEFT", "RIGHT"]}}
        }
      }
    },
    {
      "properties": {
        "type": {"const": "action"},
        "channel": {"const": "interact"}
      }
    },
    {
      "properties": {
        "type": {"const": "action"},
        "channel": {"const": "player_shoot"},
        "body": {
          "required": ["x", "y"],
          "properties": {"x": {"type": "number"}, "y": {"type": "number"}}
        }
      }
    },
    {
      "properties": {
        "type": {"const": "action"},
        "channel": {"enum": ["use", "drop"]},
        "body": {
          "required": ["item_id"],
          "properties": {"item_id": {"type": "integer", "minimum": 1}}
        }
      }
    },
    {
      "properties": {
        "type": {"const": "action"},
        "channel": {"const": "upgrade"},
        "body": {
          "required": ["cost", "type"],
          "properties": {
            "cost": {"type": "integer", "minimum": 0},
            "type": {"type": "string"}
          }
        }
      }
    }
  ]
}`
