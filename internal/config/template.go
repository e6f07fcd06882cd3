package config

// Template is the commented default file written by `aptmatch config init`
const Template = `# aptmatch configuration

[database]
path = "~/.local/share/aptmatch/aptmatch.db"

[user]
id = "default"
# Home location for distance scoring; set both or neither
# latitude = 40.7306
# longitude = -73.9866

# Percentages applied to each factor of the match score; must sum to 100
[scoring]
distance = 30
amenities = 30
property_features = 20
quality = 15
rating = 5

[ranking]
top_pick_threshold = 80
exclude_swiped = true   # hide listings you already swiped on
model_blend = 0.0       # 0 = rules only, 1 = model only
default_limit = 20

[learning]
initial_swipes = 5      # learn preferences after this many swipes
refresh_every = 10      # then recompute every N swipes

[training]
epochs = 100
learning_rate = 0.01
max_batch_size = 32
validation_split = 0.2
min_validation_size = 20
seed = 42
max_model_age_days = 7
retrain_every = 10      # retrain in the background every N swipes
timeout = "30s"

[logging]
level = "info"          # trace, debug, info, warn, error, disabled
format = "console"      # console, json

[server]
addr = ":8080"

[mcp]
enabled = true
transport = "stdio"
`
