package listing

// SampleListings returns a small mixed-shape corpus used by `aptmatch seed`
// and by tests. Each call returns a fresh copy.
func SampleListings() []Listing {
	return []Listing{
		{
			ID: "1", Title: "Sunny 1BR in the East Village", Price: 3200, Bedrooms: 1, Bathrooms: 1,
			SquareFeet: 650, YearBuilt: 1925, RenovationYear: 2021,
			Location: &Coordinates{Latitude: 40.7265, Longitude: -73.9815},
			Flags: &AmenityFlags{
				Dishwasher: true, AirConditioning: true, PetsAllowed: true, WasherInBuilding: true,
				OutdoorArea: "none", View: "city", Neighborhood: "East Village",
			},
			Images:        []string{"1a.jpg", "1b.jpg", "1c.jpg", "1d.jpg", "1e.jpg", "1f.jpg"},
			Description:   "Bright prewar one bedroom with a renovated kitchen, dishwasher and oversized windows facing the avenue. Laundry in the building and a friendly super. Close to the L and 6 trains.",
			AverageRating: Float64Ptr(4.6), TotalRatings: 18,
		},
		{
			ID: "2", Title: "Midtown studio", Price: 2400, Bedrooms: 0, Bathrooms: 1,
			SquareFeet: 380, YearBuilt: 1962,
			Location: &Coordinates{Latitude: 40.7549, Longitude: -73.9840},
			Flags: &AmenityFlags{
				WasherInBuilding: true, OutdoorArea: "none", View: "none", Neighborhood: "Midtown",
			},
			Images:      []string{"2a.jpg"},
			Description: "Compact studio near Times Square.",
		},
		{
			ID: "3", Title: "Williamsburg 2BR with terrace", Price: 4800, Bedrooms: 2, Bathrooms: 2,
			SquareFeet: 1050, YearBuilt: 2016,
			Location: &Coordinates{Latitude: 40.7081, Longitude: -73.9571},
			Flags: &AmenityFlags{
				WasherInUnit: true, Dishwasher: true, AirConditioning: true, PetsAllowed: true, Gym: true,
				OutdoorArea: "terrace", View: "skyline", Neighborhood: "Williamsburg",
			},
			Images:        []string{"3a.jpg", "3b.jpg", "3c.jpg", "3d.jpg", "3e.jpg", "3f.jpg", "3g.jpg", "3h.jpg"},
			Description:   "New construction two bedroom, two bath with a private terrace and Manhattan skyline views. Washer and dryer in unit, central air, dishwasher, and a residents-only gym. Pets welcome.",
			AverageRating: Float64Ptr(4.8), TotalRatings: 9,
		},
		{
			ID: "4", Title: "Upper East Side walk-up", Price: 2900, Bedrooms: 1, Bathrooms: 1,
			SquareFeet: 520, YearBuilt: 1940,
			Location: &Coordinates{Latitude: 40.7736, Longitude: -73.9566},
			Flags: &AmenityFlags{
				Fireplace: true, OutdoorArea: "none", View: "none", Neighborhood: "Upper East Side",
			},
			Images:        []string{"4a.jpg", "4b.jpg"},
			Description:   "Fourth floor walk-up with a decorative fireplace.",
			AverageRating: Float64Ptr(3.1), TotalRatings: 4,
		},
		{
			ID: "5", Title: "Long Island City 1BR with pool", Price: 3600, Bedrooms: 1, Bathrooms: 1,
			SquareFeet: 720, YearBuilt: 2019,
			Location: &Coordinates{Latitude: 40.7447, Longitude: -73.9485},
			Flags: &AmenityFlags{
				WasherInUnit: true, Dishwasher: true, AirConditioning: true, Gym: true, Pool: true, Parking: true,
				OutdoorArea: "balcony", View: "water", Neighborhood: "Long Island City",
			},
			Images:        []string{"5a.jpg", "5b.jpg", "5c.jpg", "5d.jpg", "5e.jpg", "5f.jpg", "5g.jpg"},
			Description:   "Full-service building with rooftop pool, gym and garage parking. The apartment has a private balcony over the East River, in-unit laundry and a chef's kitchen.",
			AverageRating: Float64Ptr(4.4), TotalRatings: 22,
		},
		{
			ID: "6", Title: "Park Slope garden duplex", Price: 5200, Bedrooms: 3, Bathrooms: 2,
			SquareFeet: 1400, YearBuilt: 1899, RenovationYear: 2012,
			Location: &Coordinates{Latitude: 40.6710, Longitude: -73.9814},
			Flags: &AmenityFlags{
				WasherInUnit: true, Dishwasher: true, PetsAllowed: true, Fireplace: true,
				OutdoorArea: "garden", View: "park", Neighborhood: "Park Slope",
			},
			Images:      []string{"6a.jpg", "6b.jpg", "6c.jpg", "6d.jpg"},
			Description: "Brownstone duplex with a private garden, two working fireplaces and original details throughout.",
		},
		{
			ID: "7", Title: "Jersey City high-rise 2BR", Price: 3900, Bedrooms: 2, Bathrooms: 1,
			SquareFeet: 980, YearBuilt: 2010,
			Location:    &Coordinates{Latitude: 40.7178, Longitude: -74.0431},
			AmenityList: []string{"Gym", "Doorman", "Parking garage", "Central air", "Roof deck"},
			Images:      []string{"7a.jpg", "7b.jpg", "7c.jpg"},
			Description: "Two bedroom in a doorman tower by the PATH with a shared roof deck.",
			AverageRating: Float64Ptr(4.0), TotalRatings: 6,
		},
		{
			ID: "8", Title: "Astoria 1BR", Price: 2300, Bedrooms: 1, Bathrooms: 1,
			SquareFeet: 600, YearBuilt: 1955,
			Location:    &Coordinates{Latitude: 40.7644, Longitude: -73.9235},
			AmenityList: []string{"Laundry room", "Pets allowed", "Hardwood floors"},
			Description: "Quiet one bedroom near the N/W.",
		},
		{
			ID: "9", Title: "Hoboken loft", Price: 4100, Bedrooms: 2, Bathrooms: 2,
			SquareFeet: 1200, YearBuilt: 1910, RenovationYear: 2018,
			Location:      &Coordinates{Latitude: 40.7440, Longitude: -74.0324},
			AmenityList:   []string{"In-unit washer", "Dishwasher", "Exposed brick", "Skyline view"},
			Images:        []string{"9a.jpg", "9b.jpg", "9c.jpg", "9d.jpg", "9e.jpg"},
			Description:   "Converted factory loft with sixteen foot ceilings, exposed brick and skyline views from every window. Renovated kitchen with dishwasher and in-unit washer/dryer.",
			AverageRating: Float64Ptr(4.7), TotalRatings: 11,
		},
		{
			ID: "10", Title: "Riverdale 3BR", Price: 3400, Bedrooms: 3, Bathrooms: 1.5,
			SquareFeet: 1300, YearBuilt: 1972,
			AmenityList: []string{"Parking", "Laundry in building", "Pool"},
			Images:      []string{"10a.jpg", "10b.jpg"},
			Description: "Large three bedroom co-op sublet with building pool.",
		},
	}
}
