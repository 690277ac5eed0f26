// Package vehicle holds the vehicle/driver pairing read from fleet master data.
package vehicle
