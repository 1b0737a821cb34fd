// Package hcl provides the HCL implementation of the config.Parser
// interface. A table file declares any number of lookup tables and at most
// one program block:
//
//	table "pre_action" {
//	  entries = {
//	    "+11" = "NEEDLE_BED FRONT"
//	  }
//	}
//
//	program {
//	  head = <<-EOT
//	    START
//	  EOT
//	  tail = "STOP"
//	}
//
// Entry values may be strings, numbers or booleans; they are converted to
// strings with cty's standard conversions.
package hcl
